package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/store"
)

var (
	runsKind          string
	runsMinConfidence float64
	runsLimit         int
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Inspect persisted parse runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Path == "" {
			return eris.New("no audit store configured (set store.path)")
		}
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return enc.Encode(run)
		}

		runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
			Kind:          model.DocumentKind(runsKind),
			MinConfidence: runsMinConfidence,
			Limit:         runsLimit,
		})
		if err != nil {
			return err
		}
		return enc.Encode(runs)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsKind, "kind", "", "filter by document kind")
	runsCmd.Flags().Float64Var(&runsMinConfidence, "min-confidence", 0, "filter by minimum confidence")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "max runs to list")
	rootCmd.AddCommand(runsCmd)
}
