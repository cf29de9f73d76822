// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"text/template"
)

const (
	noSearchData = "No data available"
	noAnalysis   = "No analysis available"
)

// combinationPromptTmpl asks the analyzer to merge both legs into one
// structured narrative.
var combinationPromptTmpl = template.Must(template.New("combination").Parse(`
You are synthesizing research on the topic: "{{.Topic}}"

Research from web search (includes current web data):
{{.SearchText}}

Initial Analysis:
{{.Analysis}}

Your task: Create a comprehensive, well-structured summary that:
1. Combines the most important insights from both sources
2. Organizes information logically with clear sections
3. Highlights key takeaways and actionable insights
4. Identifies any contradictions or gaps
5. Provides a balanced, objective perspective

Format your response with clear headings and bullet points for readability.
`))

// combinationPrompt renders the synthesis prompt. An empty searchText or a
// nil or empty analysis is replaced by its "unavailable" placeholder.
func combinationPrompt(topic, searchText string, analysis *string) (string, error) {
	data := struct {
		Topic      string
		SearchText string
		Analysis   string
	}{
		Topic:      topic,
		SearchText: noSearchData,
		Analysis:   noAnalysis,
	}
	if searchText != "" {
		data.SearchText = searchText
	}
	if analysis != nil && *analysis != "" {
		data.Analysis = *analysis
	}

	var buf bytes.Buffer
	if err := combinationPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
