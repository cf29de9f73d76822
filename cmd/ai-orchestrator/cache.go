// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// The cache lives in the server process, so these commands talk to a
// running server over its HTTP API.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or sweep a running server's research cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the entry count and TTL of a running server's cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Data types.CacheStats `json:"data"`
		}
		if err := callServer(cmd, http.MethodGet, "/cache/stats", &out); err != nil {
			return err
		}
		ttl := time.Duration(out.Data.TTLMillis) * time.Millisecond
		fmt.Printf("entries: %d\nttl:     %s\n", out.Data.Size, ttl)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove expired entries from a running server's cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			Message string `json:"message"`
			Removed int    `json:"removed"`
		}
		if err := callServer(cmd, http.MethodPost, "/cache/clear", &out); err != nil {
			return err
		}
		fmt.Printf("%s (%d removed)\n", out.Message, out.Removed)
		return nil
	},
}

// callServer sends a bodiless request to the server named by --server and
// decodes the JSON reply into out.
func callServer(cmd *cobra.Command, method, path string, out any) error {
	base, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func init() {
	server := os.Getenv("AI_ORCHESTRATOR_SERVER_URL")
	if server == "" {
		server = "http://localhost" + defaultAddr
	}
	cacheCmd.PersistentFlags().String("server", server, "base URL of a running ai-orchestrator server")
	cacheCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
