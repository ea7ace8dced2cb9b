package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func (c *cli) newAskCmd() *cobra.Command {
	var (
		mode     string
		nResults int
		docIDs   []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the indexed documents",
		Long: `Ask a question about the indexed documents. Mention a document with
@name to restrict the search to it.

Examples:
  sercha-research ask "What were the main findings?"
  sercha-research ask --mode compare "@report2023 vs @report2024 revenue"
  sercha-research ask --mode timeline -n 15 "project milestones" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.runtime.Config().CanAnswer() {
				c.logger.Warn("embedding or language model unavailable; answers will be degraded")
			}

			resp, err := a.query.Ask(ctx, &domain.QueryRequest{
				Question:    strings.Join(args, " "),
				Mode:        domain.QueryMode(mode),
				NResults:    nResults,
				DocumentIDs: docIDs,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Println(resp.Answer)
			if len(resp.Citations) > 0 {
				fmt.Println("\nSources:")
				for i, cit := range resp.Citations {
					page := ""
					if cit.PageNumber != nil {
						page = fmt.Sprintf(", page %d", *cit.PageNumber)
					}
					fmt.Printf("  [%d] %s%s (score %.2f)\n", i+1, cit.DocumentName, page, cit.RelevanceScore)
				}
			}
			fmt.Printf("\n(%s, %.2fs)\n", resp.Mode, resp.ProcessingTime)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.QueryModeAnswer), "answer, summarize, compare, extract or timeline")
	cmd.Flags().IntVarP(&nResults, "n-results", "n", 0, "chunks to retrieve (default depends on mode)")
	cmd.Flags().StringSliceVar(&docIDs, "doc", nil, "restrict to document IDs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
