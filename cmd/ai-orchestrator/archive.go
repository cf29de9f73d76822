// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ai-orchestrator/internal/archive"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived research results (list, search, show, export)",
	Long: `Archive operates on the SQLite history of research results written by
"serve" and "research" when archive.path is set. The archive is a record for
operators; it is never used to answer research requests.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent archived results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printEntries(cmd, entries)
	},
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search archived topics and insights",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		return printEntries(cmd, entries)
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return archive.Encode(os.Stdout, archive.FormatJSON, entry)
		}
		return formatResult(os.Stdout, types.ResearchResult{
			ID:               entry.ID,
			Topic:            entry.Topic,
			Depth:            entry.Depth,
			SearchData:       map[string]any{},
			Analysis:         entry.Analysis,
			CombinedInsights: entry.CombinedInsights,
			Sources:          entry.Sources,
			Timestamp:        entry.CreatedAt,
		})
	},
}

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive to YAML or JSON",
	Long: `Export writes every archived result, newest first, to stdout or to the
file given with --output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		store, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := store.Export(cmd.Context(), w, archive.Format(format)); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
		}
		return nil
	},
}

// openArchive opens the archive named by --path, falling back to
// archive.path from the configuration.
func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString("archive.path")
	}
	if path == "" {
		return nil, errors.New("archive is disabled: set archive.path or pass --path")
	}
	return archive.NewStore(types.ArchiveConfig{Path: path})
}

func printEntries(cmd *cobra.Command, entries []archive.Entry) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return archive.Encode(os.Stdout, archive.FormatJSON, entries)
	}
	return formatEntries(os.Stdout, entries)
}

func formatEntries(w io.Writer, entries []archive.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-13s  %-40s  %s\n", "ID", "Created", "Depth", "Topic", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 124))
	for _, e := range entries {
		topic := truncate(e.Topic, 40)
		fmt.Fprintf(w, "%-36s  %-20s  %-13s  %-40s  %d\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Depth, topic, len(e.Sources))
	}
	_, err := fmt.Fprintf(w, "\n%d results\n", len(entries))
	return err
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	archiveCmd.PersistentFlags().String("path", "", "SQLite archive path (default archive.path)")

	archiveListCmd.Flags().Int("limit", 20, "maximum results")
	archiveListCmd.Flags().Bool("json", false, "output results as JSON")

	archiveSearchCmd.Flags().Int("limit", 20, "maximum results")
	archiveSearchCmd.Flags().Bool("json", false, "output results as JSON")

	archiveShowCmd.Flags().Bool("json", false, "output the entry as JSON")

	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	archiveExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
