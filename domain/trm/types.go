package trm

import "time"

// TargetStance reduces a user's desired outcome for one or more packs to a
// single named axis to maximize per pack. Full desired distributions are
// supported by AxisWeights for callers that want to target a shape rather
// than a single axis.
type TargetStance struct {
	Pack        string
	Axis        string
	AxisWeights map[string]float64 // optional: full desired distribution
}

// ConvergenceScore averages the probability mass landing on the stance's
// target axes in readings, reducing TargetStance to a scalar.
func (t TargetStance) ConvergenceScore(readings Readings) float64 {
	if len(t.AxisWeights) == 0 {
		p, _ := readings.Get(t.Axis)
		return p
	}
	sum, weight := 0.0, 0.0
	for axis, w := range t.AxisWeights {
		p, _ := readings.Get(axis)
		sum += p * w
		weight += w
	}
	if weight < 1e-12 {
		return 0
	}
	return sum / weight
}

// TransformationContext is the input bundle handed to any strategy.
type TransformationContext struct {
	Text                string
	Pack                string
	Axis                string
	CurrentReadings     Readings
	ImprovementThreshold float64 // typical 0.01-0.10
	MaxChangeRatio       float64 // typical 0.3-0.4
}

// CandidateSource names which generator produced a candidate rewrite.
type CandidateSource string

const (
	SourceRule CandidateSource = "rule"
	SourceLLM  CandidateSource = "llm"
)

// TransformationCandidate is a proposed rewrite awaiting measurement.
type TransformationCandidate struct {
	Text        string
	Source      CandidateSource
	RuleName    string  // set when Source == SourceRule
	Temperature float64 // set when Source == SourceLLM
	Confidence  float64
}

// TrajectoryPoint is one step of an optional trace across GFS retries,
// letting a caller inspect how readings evolved rather than only the
// final outcome.
type TrajectoryPoint struct {
	Iteration   int
	Text        string
	Readings    Readings
	RhoDistance float64
}

// TransformationResult is the immutable outcome of one transform() call.
type TransformationResult struct {
	ID              string
	OriginalText    string
	TransformedText string
	ReadingsBefore  Readings
	ReadingsAfter   Readings
	Delta           map[string]float64
	TargetImprovement float64
	RhoDistanceMoved  float64
	TextChangeRatio   float64
	CoherenceScore    float64
	Success           bool
	Strategy          string // "rule", "llm", or "hybrid:<winner>"
	RulesOrPromptsUsed []string
	ElapsedTime       time.Duration
	EstimatedCost     float64
	ErrorReason       string
	Trajectory        []TrajectoryPoint
}
