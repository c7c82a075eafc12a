package rules

import "trmcore/domain/trm"

// DefaultRuleSet returns a small, hand-authored rule set covering the
// standard pack families, in the spirit of the corpus-learned rule sets a
// production deployment would load from disk instead.
func DefaultRuleSet() trm.RuleSet {
	rs := trm.RuleSet{}

	add := func(pack, axis string, r trm.Rule) {
		key := trm.RuleKey(pack, axis)
		rs[key] = append(rs[key], r)
	}

	add(trm.PackTetralemma, "A", trm.Rule{
		Name: "remove-hedge-i-think", Kind: trm.RuleRemoval, Word: "I think",
		Pack: trm.PackTetralemma, Axis: "A", ExpectedDelta: 0.08, Confidence: trm.ConfidenceHigh,
	})
	add(trm.PackTetralemma, "A", trm.Rule{
		Name: "remove-hedge-i-believe", Kind: trm.RuleRemoval, Word: "I believe",
		Pack: trm.PackTetralemma, Axis: "A", ExpectedDelta: 0.06, Confidence: trm.ConfidenceHigh,
	})
	add(trm.PackTetralemma, "A", trm.Rule{
		Name: "remove-hedge-perhaps", Kind: trm.RuleRemoval, Word: "perhaps",
		Pack: trm.PackTetralemma, Axis: "A", ExpectedDelta: 0.04, Confidence: trm.ConfidenceMedium,
	})
	add(trm.PackTetralemma, "¬A", trm.Rule{
		Name: "insert-negation-not", Kind: trm.RuleInsertion, Word: "not",
		Pack: trm.PackTetralemma, Axis: "¬A", ExpectedDelta: 0.10, Confidence: trm.ConfidenceHigh,
	})

	add(trm.PackTone, "analytical", trm.Rule{
		Name: "substitute-feel-observe", Kind: trm.RuleSubstitution, From: "I feel", To: "the data suggest",
		Pack: trm.PackTone, Axis: "analytical", ExpectedDelta: 0.07, Confidence: trm.ConfidenceHigh,
	})
	add(trm.PackTone, "empathic", trm.Rule{
		Name: "substitute-data-feel", Kind: trm.RuleSubstitution, From: "the data show", To: "it feels like",
		Pack: trm.PackTone, Axis: "empathic", ExpectedDelta: 0.05, Confidence: trm.ConfidenceMedium,
	})
	add(trm.PackTone, "critical", trm.Rule{
		Name: "remove-softener-just", Kind: trm.RuleRemoval, Word: "just",
		Pack: trm.PackTone, Axis: "critical", ExpectedDelta: 0.03, Confidence: trm.ConfidenceLow,
	})

	add(trm.PackPragmatics, "clarity", trm.Rule{
		Name: "remove-filler-basically", Kind: trm.RuleRemoval, Word: "basically",
		Pack: trm.PackPragmatics, Axis: "clarity", ExpectedDelta: 0.05, Confidence: trm.ConfidenceHigh,
	})
	add(trm.PackPragmatics, "evidence", trm.Rule{
		Name: "substitute-think-show", Kind: trm.RuleSubstitution, From: "I think", To: "the evidence shows",
		Pack: trm.PackPragmatics, Axis: "evidence", ExpectedDelta: 0.09, Confidence: trm.ConfidenceHigh,
	})

	add(trm.PackAudience, "expert", trm.Rule{
		Name: "substitute-simple-technical", Kind: trm.RuleSubstitution, From: "simply put", To: "formally",
		Pack: trm.PackAudience, Axis: "expert", ExpectedDelta: 0.04, Confidence: trm.ConfidenceMedium,
	})
	add(trm.PackAudience, "general", trm.Rule{
		Name: "remove-jargon-marker", Kind: trm.RuleRemoval, Word: "formally",
		Pack: trm.PackAudience, Axis: "general", ExpectedDelta: 0.04, Confidence: trm.ConfidenceMedium,
	})

	return rs
}
