package main

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/income-verify/internal/pipeline"
)

var (
	batchKind        string
	batchConcurrency int
	batchOutDir      string
	batchXLSX        string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract income data from every PDF in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := documentKind(batchKind)
		if err != nil {
			return err
		}

		paths, err := collectPDFs(args[0])
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return eris.Errorf("no PDF documents found under %s", args[0])
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentDocuments
		}

		summary := env.Parser.ParseBatch(cmd.Context(), paths, kind, concurrency)

		if batchOutDir != "" {
			if err := writeBatchResults(summary, batchOutDir); err != nil {
				return err
			}
		}
		if batchXLSX != "" {
			if err := writeBatchWorkbook(summary, batchXLSX); err != nil {
				return err
			}
		}

		printSummary(summary)
		return nil
	},
}

// collectPDFs walks dir and returns the sorted paths of all PDF files.
func collectPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// writeBatchResults writes one JSON file per successfully parsed document.
func writeBatchResults(summary *pipeline.BatchSummary, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}
	for _, r := range summary.Results {
		if r.Err != nil {
			continue
		}
		data, err := json.MarshalIndent(r.Doc, "", "  ")
		if err != nil {
			return eris.Wrapf(err, "marshal result for %s", r.Path)
		}
		name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path)) + ".json"
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return eris.Wrapf(err, "write result for %s", r.Path)
		}
	}
	return nil
}

func printSummary(summary *pipeline.BatchSummary) {
	p := message.NewPrinter(language.English)
	p.Printf("processed %d documents in %v\n", summary.Total, summary.Duration.Round(10*time.Millisecond))
	p.Printf("  succeeded:  %d\n", summary.Succeeded)
	p.Printf("  failed:     %d\n", summary.Failed)
	p.Printf("  unreadable: %d\n", summary.Unreadable)
}

func init() {
	batchCmd.Flags().StringVar(&batchKind, "kind", "paystub", "document kind: paystub or w2")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent documents (default from config)")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "directory for per-document JSON results")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "path for a summary spreadsheet")
	rootCmd.AddCommand(batchCmd)
}
