package config

import "strings"

// TRMConfig holds the transformation-via-recursive-measurement subsystem's
// settings, namespaced under TRM_ to keep it independent of the teacher's
// database/server configuration.
type TRMConfig struct {
	Rank             int      // density matrix rank, TRM_RANK
	Shrinkage        float64  // ridge term added before eigendecomposition, TRM_SHRINKAGE
	DefaultPacks     []string // comma-separated pack names, TRM_DEFAULT_PACKS
	EmbeddingAdapter string   // "hash" or "http", TRM_EMBEDDING_ADAPTER
	EmbeddingBaseURL string   // TRM_EMBEDDING_BASE_URL
	EmbeddingAPIKey  string   // TRM_EMBEDDING_API_KEY
	EmbeddingModel   string   // TRM_EMBEDDING_MODEL
	EmbeddingDim     int      // TRM_EMBEDDING_DIM
	GenerationAdapter string  // "openai" or "none", TRM_GENERATION_ADAPTER
	GenerationModel  string   // TRM_GENERATION_MODEL
	RulesPath        string   // on-disk rule-set YAML, TRM_RULES_PATH
	CorpusPath       string   // on-disk learned-operator root, TRM_CORPUS_PATH
	MaxRounds        int      // GFS retry budget, TRM_MAX_ROUNDS
	DeploymentMode   string   // free-form tag, TRM_DEPLOYMENT_MODE; loaded but not read elsewhere
}

func loadTRMConfig() (*TRMConfig, error) {
	packs := getEnvOrDefault("TRM_DEFAULT_PACKS", "tetralemma,tone")
	return &TRMConfig{
		Rank:              getEnvIntOrDefault("TRM_RANK", 8),
		Shrinkage:         getEnvFloatOrDefault("TRM_SHRINKAGE", 0.01),
		DefaultPacks:      splitNonEmpty(packs, ","),
		EmbeddingAdapter:  getEnvOrDefault("TRM_EMBEDDING_ADAPTER", "hash"),
		EmbeddingBaseURL:  getEnvOrDefault("TRM_EMBEDDING_BASE_URL", ""),
		EmbeddingAPIKey:   getEnvOrDefault("TRM_EMBEDDING_API_KEY", ""),
		EmbeddingModel:    getEnvOrDefault("TRM_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:      getEnvIntOrDefault("TRM_EMBEDDING_DIM", 256),
		GenerationAdapter: getEnvOrDefault("TRM_GENERATION_ADAPTER", "none"),
		GenerationModel:   getEnvOrDefault("TRM_GENERATION_MODEL", "gpt-4.1-mini"),
		RulesPath:         getEnvOrDefault("TRM_RULES_PATH", ""),
		CorpusPath:        getEnvOrDefault("TRM_CORPUS_PATH", "./corpus"),
		MaxRounds:         getEnvIntOrDefault("TRM_MAX_ROUNDS", 3),
		DeploymentMode:    getEnvOrDefault("TRM_DEPLOYMENT_MODE", "offline"),
	}, nil
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
