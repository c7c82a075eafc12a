// Package rules implements the rule-based candidate-generation strategy:
// confidence-ranked lexical substitution, removal, and insertion applied
// case-insensitively with word-boundary respect.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"trmcore/domain/trm"
)

// Engine applies a RuleSet to produce deduplicated, confidence-ordered
// candidate rewrites.
type Engine struct {
	ruleSet trm.RuleSet
}

// NewEngine wraps a rule set for repeated application.
func NewEngine(ruleSet trm.RuleSet) *Engine {
	return &Engine{ruleSet: ruleSet}
}

// Apply generates candidates for (pack, axis) at confidenceFloor or above,
// filtering out any whose text-change ratio exceeds maxChangeRatio.
// Candidates are returned in descending confidence order.
func (e *Engine) Apply(text, pack, axis string, confidenceFloor trm.ConfidenceTier, maxChangeRatio float64) ([]trm.TransformationCandidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, trm.ErrEmptyText
	}
	candidateRules := e.ruleSet.RulesFor(pack, axis)

	seen := make(map[string]bool)
	out := make([]trm.TransformationCandidate, 0, len(candidateRules))

	for _, r := range candidateRules {
		if r.Confidence < confidenceFloor {
			continue
		}
		rewritten, applied := applyRule(text, r)
		if !applied {
			continue
		}
		if seen[rewritten] {
			continue
		}
		ratio := trm.TextChangeRatio(text, rewritten)
		if ratio > maxChangeRatio {
			continue
		}
		seen[rewritten] = true
		out = append(out, trm.TransformationCandidate{
			Text:       rewritten,
			Source:     trm.SourceRule,
			RuleName:   r.Name,
			Confidence: confidenceScore(r.Confidence),
		})
	}

	// Also try combining every high-confidence rule for this axis in one
	// pass (e.g. several hedging removals applied together).
	if combined, ok := applyAll(text, candidateRules, trm.ConfidenceHigh); ok && !seen[combined] {
		ratio := trm.TextChangeRatio(text, combined)
		if ratio <= maxChangeRatio {
			out = append(out, trm.TransformationCandidate{
				Text:       combined,
				Source:     trm.SourceRule,
				RuleName:   "combined-high-confidence",
				Confidence: confidenceScore(trm.ConfidenceHigh),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

func confidenceScore(t trm.ConfidenceTier) float64 {
	switch t {
	case trm.ConfidenceHigh:
		return 1.0
	case trm.ConfidenceMedium:
		return 0.6
	default:
		return 0.3
	}
}

// wordBoundaryRegex builds a case-insensitive, word-boundary-respecting
// matcher for a literal phrase.
func wordBoundaryRegex(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// applyRule applies a single rule's substitution/removal/insertion to
// text, returning (rewritten, true) or (text, false) if the rule declines.
func applyRule(text string, r trm.Rule) (string, bool) {
	switch r.Kind {
	case trm.RuleSubstitution:
		re := wordBoundaryRegex(r.From)
		loc := re.FindStringIndex(text)
		if loc == nil {
			return text, false
		}
		return text[:loc[0]] + r.To + text[loc[1]:], true

	case trm.RuleRemoval:
		re := wordBoundaryRegex(r.Word)
		loc := re.FindStringIndex(text)
		if loc == nil {
			return text, false
		}
		removed := text[:loc[0]] + text[loc[1]:]
		return collapseWhitespace(removed), true

	case trm.RuleInsertion:
		anchors := r.Anchors
		if len(anchors) == 0 {
			anchors = trm.DefaultInsertionAnchors
		}
		for _, anchor := range anchors {
			re := wordBoundaryRegex(anchor)
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			return text[:loc[1]] + " " + r.Word + text[loc[1]:], true
		}
		return text, false

	default:
		return text, false
	}
}

// applyAll folds every rule at or above tier into a single pass over text,
// applying whichever ones still match after prior rules ran.
func applyAll(text string, ruleSet []trm.Rule, tier trm.ConfidenceTier) (string, bool) {
	current := text
	appliedAny := false
	for _, r := range ruleSet {
		if r.Confidence < tier {
			continue
		}
		next, ok := applyRule(current, r)
		if ok {
			current = next
			appliedAny = true
		}
	}
	return current, appliedAny
}

var whitespaceRE = regexp.MustCompile(`[ \t]{2,}`)

func collapseWhitespace(s string) string {
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.TrimSpace(s)
}
