// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ai-orchestrator/internal/archive"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic...>",
	Short: "Research a topic once and print the synthesized result",
	Long: `Research runs a single research request in-process: the search and
analysis providers are queried concurrently and their answers synthesized.
The result is printed as text, or as JSON or YAML with --json or --yaml.
When archive.path is set the result is also archived.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("depth", "", "basic, detailed, or comprehensive (default detailed)")
	researchCmd.Flags().Bool("json", false, "print the result as JSON")
	researchCmd.Flags().Bool("yaml", false, "print the result as YAML")
	researchCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	depth, _ := cmd.Flags().GetString("depth")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	req := types.ResearchRequest{Topic: strings.Join(args, " "), Depth: types.Depth(depth)}
	result, err := a.orchestrator.Conduct(cmd.Context(), req)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return archive.Encode(os.Stdout, archive.FormatJSON, result)
	case yamlOutput:
		return archive.Encode(os.Stdout, archive.FormatYAML, result)
	default:
		return formatResult(os.Stdout, result)
	}
}

// formatResult prints a result for reading in a terminal.
func formatResult(w io.Writer, r types.ResearchResult) error {
	fmt.Fprintf(w, "# %s (%s)\n\n", r.Topic, r.Depth)
	fmt.Fprintln(w, strings.TrimSpace(r.CombinedInsights))

	if len(r.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, s := range r.Sources {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, s)
		}
	}

	var degraded []string
	if r.SearchData == nil {
		degraded = append(degraded, "search")
	}
	if r.Analysis == nil {
		degraded = append(degraded, "analysis")
	}
	if len(degraded) > 0 {
		fmt.Fprintf(w, "\nwarning: %s unavailable; result built without it\n", strings.Join(degraded, " and "))
	}

	_, err := fmt.Fprintf(w, "\nid %s  %s\n", r.ID, r.Timestamp.Format("2006-01-02 15:04:05Z07:00"))
	return err
}
