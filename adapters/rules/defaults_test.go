package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trmcore/domain/trm"
)

func TestDefaultRuleSetCoversStandardPacks(t *testing.T) {
	rs := DefaultRuleSet()
	for _, key := range []struct{ pack, axis string }{
		{trm.PackTetralemma, "A"},
		{trm.PackTetralemma, "¬A"},
		{trm.PackTone, "analytical"},
		{trm.PackPragmatics, "clarity"},
		{trm.PackAudience, "expert"},
	} {
		rules := rs.RulesFor(key.pack, key.axis)
		assert.NotEmptyf(t, rules, "expected rules for %s/%s", key.pack, key.axis)
	}
}

func TestDefaultRuleSetEntriesCarryConsistentPackAndAxis(t *testing.T) {
	rs := DefaultRuleSet()
	for key, rules := range rs {
		for _, r := range rules {
			assert.Equal(t, key, trm.RuleKey(r.Pack, r.Axis))
		}
	}
}
