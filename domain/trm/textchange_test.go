package trm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextChangeRatioIdenticalTextIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, TextChangeRatio("the quick fox", "the quick fox"), 1e-9)
}

func TestTextChangeRatioCompletelyDifferentIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, TextChangeRatio("apples bananas", "xylophones zeppelins"), 1e-9)
}

func TestTextChangeRatioIgnoresPunctuationAndCase(t *testing.T) {
	assert.InDelta(t, 0.0, TextChangeRatio("Hello, World!", "hello world"), 1e-9)
}

func TestTextChangeRatioBothEmptyIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, TextChangeRatio("", ""), 1e-9)
}

func TestTextChangeRatioPartialOverlap(t *testing.T) {
	r := TextChangeRatio("the quick brown fox", "the quick brown dog")
	assert.Greater(t, r, 0.0)
	assert.Less(t, r, 1.0)
}
