// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"fmt"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// searchInstructions phrase the search query for each depth.
var searchInstructions = map[types.Depth]string{
	types.DepthBasic:         "Provide a brief overview",
	types.DepthDetailed:      "Provide detailed information with examples",
	types.DepthComprehensive: "Provide comprehensive, in-depth analysis with multiple perspectives",
}

// analysisInstructions phrase the first-stage analysis prompt for each depth.
var analysisInstructions = map[types.Depth]string{
	types.DepthBasic:         "Provide a concise analysis focusing on the most important aspects",
	types.DepthDetailed:      "Provide a detailed analysis covering key aspects, implications, and context",
	types.DepthComprehensive: "Provide a comprehensive analysis including history, current state, future implications, different perspectives, and potential challenges",
}

// instruction looks up depth in table, falling back to the detailed phrasing
// for unrecognized values.
func instruction(table map[types.Depth]string, depth types.Depth) string {
	if s, ok := table[depth]; ok {
		return s
	}
	return table[types.DepthDetailed]
}

// SearchQuery builds the web-search query for topic at depth.
func SearchQuery(topic string, depth types.Depth) string {
	return fmt.Sprintf("%s about: %s", instruction(searchInstructions, depth), topic)
}

// AnalysisPrompt builds the first-stage analysis prompt for topic at depth.
func AnalysisPrompt(topic string, depth types.Depth) string {
	return fmt.Sprintf("Analyze the following topic: \"%s\"\n\n%s", topic, instruction(analysisInstructions, depth))
}
