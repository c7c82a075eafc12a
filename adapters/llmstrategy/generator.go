// Package llmstrategy adapts an external text generator into a candidate
// generator for the transformation search: prompt assembly, multi-
// temperature decoding, and response parsing.
package llmstrategy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"trmcore/domain/trm"
	"trmcore/ports"
)

// ExemplarSource returns a small number of exemplar sentences for a
// (pack, axis) pair, drawn from a per-axis corpus file. Optional: a nil
// source just omits the few-shot section from the prompt.
type ExemplarSource func(pack, axis string) []string

// Generator wraps a GenerationPort to produce LLM-authored candidates.
type Generator struct {
	client      ports.GenerationPort
	exemplars   ExemplarSource
	model       string
	temperatures []float64 // one request per entry; escalated per round
}

// NewGenerator builds an LLM-guided candidate generator. baseTemperatures
// is the temperature schedule for round 0; later rounds widen it.
func NewGenerator(client ports.GenerationPort, model string, exemplars ExemplarSource, baseTemperatures []float64) *Generator {
	if len(baseTemperatures) == 0 {
		baseTemperatures = []float64{0.3, 0.6, 0.9}
	}
	return &Generator{client: client, exemplars: exemplars, model: model, temperatures: baseTemperatures}
}

// Generate implements ports.CandidateGenerator.
func (g *Generator) Generate(ctx context.Context, tctx trm.TransformationContext, round int) ([]trm.TransformationCandidate, error) {
	temps := g.temperaturesForRound(round)
	prompt := g.buildPrompt(tctx)

	out := make([]trm.TransformationCandidate, 0, len(temps))
	for _, temp := range temps {
		raw, err := g.client.Generate(ctx, prompt, temp)
		if err != nil {
			if isRetryable(err) {
				continue // a retryable failure at one temperature shouldn't sink the whole batch
			}
			return out, err
		}
		text := parseResponse(raw)
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, trm.TransformationCandidate{
			Text:        text,
			Source:      trm.SourceLLM,
			Temperature: temp,
			Confidence:  0.5,
		})
	}
	return out, nil
}

func isRetryable(err error) bool {
	return strings.Contains(err.Error(), "retry") || strings.Contains(err.Error(), "rate limit")
}

// temperaturesForRound widens the sampling batch on each retry: round 0
// uses the base schedule, later rounds append a hotter sample per round.
func (g *Generator) temperaturesForRound(round int) []float64 {
	if round <= 0 {
		return g.temperatures
	}
	extra := make([]float64, 0, round)
	for i := 1; i <= round; i++ {
		hot := g.temperatures[len(g.temperatures)-1] + 0.1*float64(i)
		if hot > 1.0 {
			hot = 1.0
		}
		extra = append(extra, hot)
	}
	return append(append([]float64{}, g.temperatures...), extra...)
}

func (g *Generator) buildPrompt(tctx trm.TransformationContext) string {
	var b strings.Builder

	lo := int(float64(len(tctx.Text)) * 0.8)
	hi := int(float64(len(tctx.Text)) * 1.2)

	dominant, dominantP := dominantAxis(tctx.CurrentReadings)

	fmt.Fprintf(&b, "Rewrite the passage below so that it shifts toward the %q stance within the %q dimension.\n", tctx.Axis, tctx.Pack)
	fmt.Fprintf(&b, "Keep the rewrite between %d and %d characters long.\n", lo, hi)
	fmt.Fprintf(&b, "Currently the dominant stance is %q (probability %.2f); the target is %q.\n", dominant, dominantP, tctx.Axis)
	b.WriteString("Preserve the original meaning, claims, and topic. Do not add new arguments or remove the central point.\n")
	b.WriteString("Output only the rewritten passage: no preamble, no explanation, no surrounding quotation marks, no commentary after the text.\n\n")

	if g.exemplars != nil {
		if examples := g.exemplars(tctx.Pack, tctx.Axis); len(examples) > 0 {
			b.WriteString("Examples of text already in the target stance:\n")
			for _, ex := range examples {
				fmt.Fprintf(&b, "- %s\n", ex)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("Passage:\n")
	b.WriteString(tctx.Text)
	return b.String()
}

func dominantAxis(r trm.Readings) (string, float64) {
	best := ""
	bestP := -1.0
	for _, axis := range r.Axes {
		p := r.Probs[axis]
		if p > bestP {
			bestP = p
			best = axis
		}
	}
	return best, bestP
}

var (
	prefixPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*here(?:'s| is)[^:\n]*:\s*`),
		regexp.MustCompile(`(?i)^\s*transformed text:\s*`),
		regexp.MustCompile(`(?i)^\s*rewritten(?: passage| text)?:\s*`),
		regexp.MustCompile(`(?i)^\s*output:\s*`),
	}
	quoteTrim = regexp.MustCompile(`^["'"]+|["'"]+$`)
)

// parseResponse strips meta-prefixes, enclosing quotes, and any trailing
// commentary paragraph separated from the rewrite by a blank line.
func parseResponse(raw string) string {
	text := strings.TrimSpace(raw)

	if parts := strings.SplitN(text, "\n\n", 2); len(parts) == 2 {
		text = strings.TrimSpace(parts[0])
	}

	for _, re := range prefixPatterns {
		text = re.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(text)
	text = quoteTrim.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
