package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trmcore/domain/trm"
)

// ruleFile mirrors trm.Rule in a YAML-friendly shape; on-disk rule sets let
// an operator tune or extend the rule engine's catalogue without a
// recompile.
type ruleFile struct {
	Rules []struct {
		Name          string   `yaml:"name"`
		Kind          string   `yaml:"kind"`
		From          string   `yaml:"from"`
		To            string   `yaml:"to"`
		Word          string   `yaml:"word"`
		Anchors       []string `yaml:"anchors"`
		Pack          string   `yaml:"pack"`
		Axis          string   `yaml:"axis"`
		ExpectedDelta float64  `yaml:"expected_delta"`
		Confidence    string   `yaml:"confidence"`
	} `yaml:"rules"`
}

// LoadRuleSet reads a YAML rule catalogue from path and returns it as a
// trm.RuleSet. An empty path is not an error: callers fall back to the
// built-in default rule set.
func LoadRuleSet(path string) (trm.RuleSet, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %q: %w", path, err)
	}
	var parsed ruleFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing rule file %q: %w", path, err)
	}

	rs := trm.RuleSet{}
	for _, r := range parsed.Rules {
		rule := trm.Rule{
			Name:          r.Name,
			Kind:          trm.RuleKind(r.Kind),
			From:          r.From,
			To:            r.To,
			Word:          r.Word,
			Anchors:       r.Anchors,
			Pack:          r.Pack,
			Axis:          r.Axis,
			ExpectedDelta: r.ExpectedDelta,
			Confidence:    parseConfidence(r.Confidence),
		}
		key := trm.RuleKey(r.Pack, r.Axis)
		rs[key] = append(rs[key], rule)
	}
	return rs, nil
}

func parseConfidence(s string) trm.ConfidenceTier {
	switch s {
	case "high":
		return trm.ConfidenceHigh
	case "medium":
		return trm.ConfidenceMedium
	default:
		return trm.ConfidenceLow
	}
}
