// Command trmctl drives the transformation loop from the command line:
// measure a text against a pack, transform it toward a target axis, learn
// a pack from an on-disk corpus, or verify an already-written pair of
// texts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"trmcore/adapters/api"
	"trmcore/adapters/corpus"
	"trmcore/adapters/embedding"
	"trmcore/adapters/llm"
	"trmcore/adapters/llmstrategy"
	"trmcore/adapters/report"
	"trmcore/adapters/rules"
	"trmcore/app"
	"trmcore/domain/trm"
	"trmcore/internal/config"
	"trmcore/internal/registry"
	"trmcore/ports"
)

var errNoConvergence = errors.New("no candidate reached target")

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rootCmd, err := buildRootCmd(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, errNoConvergence):
		return 5
	case errors.Is(err, trm.ErrProviderUnavailable), errors.Is(err, trm.ErrGenerationRetryable):
		return 3
	case errors.Is(err, trm.ErrNumericalFailure), errors.Is(err, trm.ErrPOVMConstruction):
		return 4
	case errors.Is(err, trm.ErrInvalidInput), errors.Is(err, trm.ErrEmptyText),
		errors.Is(err, trm.ErrUnknownPack), errors.Is(err, trm.ErrUnknownAxis),
		errors.Is(err, trm.ErrDimensionMismatch), errors.Is(err, trm.ErrConfig):
		return 2
	default:
		return 1
	}
}

func buildRootCmd(cfg *config.Config) (*cobra.Command, error) {
	reg, embedder, err := bootstrap(cfg)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "trmctl",
		Short: "Measure, transform, learn, and verify text against POVM packs",
	}

	root.AddCommand(
		newMeasureCmd(reg, embedder, cfg),
		newTransformCmd(reg, embedder, cfg),
		newLearnCmd(reg, embedder, cfg),
		newVerifyCmd(reg, embedder, cfg),
		newServeCmd(reg, embedder, cfg),
	)
	return root, nil
}

func newServeCmd(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config) *cobra.Command {
	var strategyName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /measure and /transform over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Server.GinMode != "" {
				gin.SetMode(cfg.Server.GinMode)
			}
			srv := api.NewServer(reg, embedder, func(pack *trm.Pack) (ports.TransformStrategy, error) {
				return buildStrategy(reg, embedder, cfg, pack, strategyName)
			})
			return srv.Run(":" + cfg.Server.Port)
		},
	}
	cmd.Flags().StringVar(&strategyName, "strategy", "hybrid", "rule, llm, or hybrid")
	return cmd
}

// bootstrap registers the default random packs and rule set named by
// configuration, and builds the configured embedding adapter. Packs
// previously learned to disk (under TRM_CORPUS_PATH) override the random
// defaults when present.
func bootstrap(cfg *config.Config) (*registry.Registry, ports.EmbeddingPort, error) {
	reg := registry.New()
	ruleSet, err := config.LoadRuleSet(cfg.TRM.RulesPath)
	if err != nil {
		return nil, nil, err
	}
	if ruleSet == nil {
		ruleSet = rules.DefaultRuleSet()
	}
	reg.SetRuleSet(ruleSet)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range cfg.TRM.DefaultPacks {
		axes, err := trm.StandardAxes(name)
		if err != nil {
			return nil, nil, err
		}
		pack, err := trm.NewRandomPack(name, name+" pack", axes, cfg.TRM.Rank, 1)
		if err != nil {
			return nil, nil, err
		}
		if learned, err := corpus.LoadPack(cfg.TRM.CorpusPath, name, name+" pack", cfg.TRM.Rank, axes); err == nil {
			pack = learned
		}
		reg.Register(pack)
	}
	return reg, embedder, nil
}

func buildEmbedder(cfg *config.Config) (ports.EmbeddingPort, error) {
	switch cfg.TRM.EmbeddingAdapter {
	case "http":
		return embedding.NewHTTPAdapter(embedding.HTTPConfig{
			BaseURL: cfg.TRM.EmbeddingBaseURL,
			APIKey:  cfg.TRM.EmbeddingAPIKey,
			Model:   cfg.TRM.EmbeddingModel,
			Dim:     cfg.TRM.EmbeddingDim,
		})
	default:
		return embedding.NewHashAdapter(cfg.TRM.EmbeddingDim), nil
	}
}

func buildStrategy(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config, pack *trm.Pack, strategyName string) (ports.TransformStrategy, error) {
	ruleStrategy := app.NewTransformService(rules.NewGenerator(reg.RuleSet()), embedder, pack, "rule")
	ruleStrategy.MaxRounds = cfg.TRM.MaxRounds

	switch strategyName {
	case "rule":
		return ruleStrategy, nil
	case "llm":
		llmStrategy, err := buildLLMStrategy(embedder, cfg, pack)
		if err != nil {
			return nil, err
		}
		return llmStrategy, nil
	case "hybrid", "":
		llmStrategy, err := buildLLMStrategy(embedder, cfg, pack)
		if err != nil {
			return ruleStrategy, nil // no generation provider configured: hybrid degrades to rule-only
		}
		return app.NewHybridStrategy(ruleStrategy, llmStrategy), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", trm.ErrInvalidInput, strategyName)
	}
}

func buildLLMStrategy(embedder ports.EmbeddingPort, cfg *config.Config, pack *trm.Pack) (ports.TransformStrategy, error) {
	if cfg.TRM.GenerationAdapter != "openai" {
		return nil, fmt.Errorf("%w: TRM_GENERATION_ADAPTER is not configured", trm.ErrProviderUnavailable)
	}
	generationClient, err := llm.NewGenerationAdapter(llm.Config{
		Model:       cfg.TRM.GenerationModel,
		APIKey:      cfg.LLM.OpenAIKey,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trm.ErrProviderUnavailable, err)
	}
	generator := llmstrategy.NewGenerator(generationClient, cfg.TRM.GenerationModel, nil, nil)
	svc := app.NewTransformService(generator, embedder, pack, "llm")
	svc.MaxRounds = cfg.TRM.MaxRounds
	svc.CostPerMillionTokens = generationClient.CostPerMillionTokens()
	return svc, nil
}

func newMeasureCmd(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure <pack> <text>",
		Short: "Measure text against a POVM pack and print the resulting readings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packName, text := args[0], args[1]
			pack, err := reg.Pack(packName)
			if err != nil {
				return err
			}
			emb, err := embedder.Embed(cmd.Context(), text)
			if err != nil {
				return err
			}
			proj := trm.NewRandomProjection(len(emb), cfg.TRM.Rank, 1)
			rho, _, err := trm.Build(emb, trm.BuildOptions{Rank: cfg.TRM.Rank, Shrinkage: cfg.TRM.Shrinkage, Projection: proj})
			if err != nil {
				return err
			}
			readings, err := pack.Measure(rho)
			if err != nil {
				return err
			}
			for _, axis := range readings.Axes {
				fmt.Printf("%-20s %.4f\n", axis, readings.Probs[axis])
			}
			return nil
		},
	}
	return cmd
}

func newTransformCmd(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config) *cobra.Command {
	var strategyName string
	var threshold float64
	var maxChangeRatio float64

	cmd := &cobra.Command{
		Use:   "transform <pack> <axis> <text>",
		Short: "Rewrite text to move its readings toward a target axis",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			packName, axis, text := args[0], args[1], args[2]
			pack, err := reg.Pack(packName)
			if err != nil {
				return err
			}
			strategy, err := buildStrategy(reg, embedder, cfg, pack, strategyName)
			if err != nil {
				return err
			}
			tctx := trm.TransformationContext{
				Text:                 text,
				Pack:                 packName,
				Axis:                 axis,
				ImprovementThreshold: threshold,
				MaxChangeRatio:       maxChangeRatio,
			}
			result, err := strategy.Transform(cmd.Context(), tctx)
			if err != nil {
				return err
			}
			fmt.Println(report.Render(result, tctx))
			if !result.Success {
				return errNoConvergence
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&strategyName, "strategy", "hybrid", "rule, llm, or hybrid")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.05, "minimum target-axis improvement to count as success")
	cmd.Flags().Float64Var(&maxChangeRatio, "max-change-ratio", 0.35, "maximum allowed Jaccard text-change ratio")
	return cmd
}

func newVerifyCmd(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "verify <pack> <axis> <before-text> <after-text>",
		Short: "Verify whether a rewrite already made actually moved readings toward an axis",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			packName, axis, before, after := args[0], args[1], args[2], args[3]
			pack, err := reg.Pack(packName)
			if err != nil {
				return err
			}
			embBefore, err := embedder.Embed(cmd.Context(), before)
			if err != nil {
				return err
			}
			embAfter, err := embedder.Embed(cmd.Context(), after)
			if err != nil {
				return err
			}
			proj := trm.NewRandomProjection(len(embBefore), cfg.TRM.Rank, 1)
			result, err := trm.Verify(embBefore, embAfter, pack, axis, threshold,
				trm.VerifyOptions{Rank: cfg.TRM.Rank, Shrinkage: cfg.TRM.Shrinkage, Projection: proj})
			if err != nil {
				return err
			}
			fmt.Printf("target achieved: %v\n", result.TargetAchieved)
			fmt.Printf("magnitude:       %.4f\n", result.Magnitude)
			fmt.Printf("alignment:       %.4f\n", result.Alignment)
			fmt.Printf("rho distance:    %.4f\n", result.RhoDistance)
			fmt.Printf("coherence:       %.4f\n", trm.Coherence(result.RhoDistance))
			if !result.Success {
				return errNoConvergence
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.05, "minimum target-axis improvement to count as success")
	return cmd
}

func newLearnCmd(reg *registry.Registry, embedder ports.EmbeddingPort, cfg *config.Config) *cobra.Command {
	var heldOutCount int

	cmd := &cobra.Command{
		Use:   "learn <pack>",
		Short: "Learn a pack's operators from the on-disk exemplar corpus and validate discrimination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packName := args[0]
			axes, err := trm.StandardAxes(packName)
			if err != nil {
				return err
			}
			learner := corpus.NewLearner(embedder, cfg.TRM.CorpusPath, cfg.TRM.Rank, cfg.TRM.Shrinkage)
			ctx := context.Background()
			_, learnReport, err := learner.ValidateFromDisk(ctx, packName, packName+" pack", axes, cfg.TRM.EmbeddingDim, 1, heldOutCount)
			if err != nil {
				return err
			}
			fmt.Printf("recommendation: %s\n", learnReport.Recommendation)
			for _, op := range learnReport.Operators {
				fmt.Printf("%-20s d=%.3f coverage=%.3f variance=%.6f acceptable=%v\n",
					op.Axis, op.CohensD, op.Coverage, op.Variance, op.Acceptable)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&heldOutCount, "held-out", 10, "exemplars per axis to hold out for validation")
	return cmd
}
