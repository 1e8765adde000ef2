package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/model"
)

var parseKind string

var parseCmd = &cobra.Command{
	Use:   "parse <file.pdf>",
	Short: "Extract structured income data from one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := documentKind(parseKind)
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		doc, err := env.Parser.Parse(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}

		zap.L().Info("document parsed",
			zap.String("path", args[0]),
			zap.Float64("confidence", doc.Confidence),
			zap.Int("warnings", len(doc.Warnings)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func documentKind(s string) (model.DocumentKind, error) {
	switch s {
	case "paystub":
		return model.KindPaystub, nil
	case "w2":
		return model.KindW2, nil
	default:
		return "", eris.Errorf("unknown document kind %q (want paystub or w2)", s)
	}
}

func init() {
	parseCmd.Flags().StringVar(&parseKind, "kind", "paystub", "document kind: paystub or w2")
	rootCmd.AddCommand(parseCmd)
}
