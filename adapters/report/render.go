// Package report renders a TransformationResult into a Markdown trace
// report and its HTML equivalent, the human-facing summary of one run of
// the transformation loop.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"

	"trmcore/domain/trm"
)

// Render produces a Markdown trace document: before/after readings, the
// delta on the target axis, and the round-by-round trajectory.
func Render(result trm.TransformationResult, tctx trm.TransformationContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transformation %s\n\n", result.ID)
	fmt.Fprintf(&b, "**Strategy:** %s  \n", result.Strategy)
	fmt.Fprintf(&b, "**Target axis:** %s (pack %s)  \n", tctx.Axis, tctx.Pack)
	fmt.Fprintf(&b, "**Outcome:** %s  \n\n", outcomeLabel(result))

	b.WriteString("## Original\n\n")
	fmt.Fprintf(&b, "> %s\n\n", result.OriginalText)
	renderReadings(&b, "Readings before", result.ReadingsBefore)

	if result.Success {
		b.WriteString("## Transformed\n\n")
		fmt.Fprintf(&b, "> %s\n\n", result.TransformedText)
		renderReadings(&b, "Readings after", result.ReadingsAfter)

		fmt.Fprintf(&b, "**Target improvement:** %.4f  \n", result.TargetImprovement)
		fmt.Fprintf(&b, "**Coherence:** %.4f  \n", result.CoherenceScore)
		fmt.Fprintf(&b, "**Text change ratio:** %.4f  \n", result.TextChangeRatio)
		fmt.Fprintf(&b, "**Rho distance moved:** %.4f  \n\n", result.RhoDistanceMoved)
	} else {
		fmt.Fprintf(&b, "**Reason:** %s\n\n", result.ErrorReason)
	}

	if len(result.RulesOrPromptsUsed) > 0 {
		b.WriteString("## Contributing rules / prompts\n\n")
		for _, name := range result.RulesOrPromptsUsed {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(result.Trajectory) > 0 {
		b.WriteString("## Trajectory\n\n")
		b.WriteString("| Round | Rho distance | Target probability |\n")
		b.WriteString("|---|---|---|\n")
		for _, point := range result.Trajectory {
			p, _ := point.Readings.Get(tctx.Axis)
			fmt.Fprintf(&b, "| %d | %.4f | %.4f |\n", point.Iteration, point.RhoDistance, p)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_Elapsed: %s, estimated cost: $%.6f_\n", result.ElapsedTime, result.EstimatedCost)
	return b.String()
}

// RenderHTML converts the Markdown trace to HTML for embedding in a web
// view, matching the teacher's ToHTML call with default renderer options.
func RenderHTML(result trm.TransformationResult, tctx trm.TransformationContext) string {
	md := Render(result, tctx)
	html := markdown.ToHTML([]byte(md), nil, nil)
	return string(html)
}

func outcomeLabel(result trm.TransformationResult) string {
	if result.Success {
		return "target reached"
	}
	return "no candidate reached target"
}

func renderReadings(b *strings.Builder, heading string, readings trm.Readings) {
	fmt.Fprintf(b, "**%s:**\n\n", heading)
	axes := make([]string, len(readings.Axes))
	copy(axes, readings.Axes)
	sort.SliceStable(axes, func(i, j int) bool {
		return readings.Probs[axes[i]] > readings.Probs[axes[j]]
	})
	for _, axis := range axes {
		fmt.Fprintf(b, "- %s: %.4f\n", axis, readings.Probs[axis])
	}
	b.WriteString("\n")
}
