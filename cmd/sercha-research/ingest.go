package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-research/internal/adapters/driven/files"
	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/worker"
)

func (c *cli) newIngestCmd() *cobra.Command {
	var (
		includes    []string
		excludes    []string
		concurrency int
		urls        []string
	)

	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Index documents from a directory or web pages",
		Long: `Index every matching document under a directory, and optionally web pages.

Examples:
  sercha-research ingest ./papers
  sercha-research ingest . --include "**/*.pdf" --exclude "drafts/**"
  sercha-research ingest --url https://example.com/article`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.runtime.Config().CanIngest() {
				return fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
			}

			failed := 0
			for _, u := range urls {
				doc, err := a.documents.IngestURL(ctx, u)
				if err != nil {
					fmt.Printf("✗ %s: %v\n", u, err)
					failed++
					continue
				}
				fmt.Printf("✓ %s (%s, %d chunks)\n", doc.Name, doc.ID, doc.ChunkCount)
			}

			if len(args) == 0 && len(urls) > 0 {
				return failures(failed)
			}

			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			root, err = filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("path does not exist: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("path is not a directory: %s", root)
			}

			fsys := os.DirFS(root)
			fmt.Printf("Scanning %s...\n", root)
			paths, err := files.NewWalker(includes, excludes).Walk(fsys)
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}
			if len(paths) == 0 {
				fmt.Println("No matching documents found")
				return failures(failed)
			}

			w := worker.NewWorker(worker.WorkerConfig{
				Documents:   a.documents,
				Files:       fsys,
				Logger:      c.logger,
				Concurrency: concurrency,
			})
			if err := w.Start(ctx); err != nil {
				return err
			}

			go func() {
				defer w.Close()
				for _, p := range paths {
					if err := w.Submit(ctx, worker.Job{Path: p}); err != nil {
						return
					}
				}
			}()

			bar := newProgressBar(len(paths))
			start := time.Now()
			var errs []worker.Result
			chunks := 0
			for r := range w.Results() {
				if r.Err != nil {
					errs = append(errs, r)
				} else {
					chunks += r.Document.ChunkCount
				}
				_ = bar.Add(1)
			}

			for _, r := range errs {
				fmt.Printf("✗ %s: %v\n", r.Job.Path, r.Err)
			}
			fmt.Printf("Indexed %d of %d documents (%d chunks) in %s\n",
				len(paths)-len(errs), len(paths), chunks, time.Since(start).Round(time.Millisecond))

			return failures(failed + len(errs))
		},
	}

	cmd.Flags().StringSliceVar(&includes, "include", files.DefaultIncludes, "glob patterns to index")
	cmd.Flags().StringSliceVar(&excludes, "exclude", files.DefaultExcludes, "glob patterns to skip")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "documents processed in parallel")
	cmd.Flags().StringArrayVar(&urls, "url", nil, "web page to index (repeatable)")

	return cmd
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func failures(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d document(s) failed", n)
}
