package main

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/pipeline"
	"github.com/sells-group/income-verify/internal/store"
)

var exportKind string

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Export recorded parse runs to a spreadsheet",
	Args:  cobra.ExactArgs(1),
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

		runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
			Kind:  model.DocumentKind(exportKind),
			Limit: 10000,
		})
		if err != nil {
			return err
		}
		return writeRunsWorkbook(runs, args[0])
	},
}

// writeRunsWorkbook writes one row per recorded parse run.
func writeRunsWorkbook(runs []store.Run, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Runs")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Run ID", "Path", "Kind", "Confidence", "Warnings", "Recorded At"} {
		header.AddCell().SetString(h)
	}

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.Path)
		row.AddCell().SetString(string(r.Kind))
		row.AddCell().SetFloat(r.Confidence)
		row.AddCell().SetInt(r.WarningCount)
		row.AddCell().SetString(r.RecordedAt.Format("2006-01-02 15:04:05"))
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

// writeBatchWorkbook writes a one-row-per-document summary spreadsheet for
// review of a batch run.
func writeBatchWorkbook(summary *pipeline.BatchSummary, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Documents")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Path", "Status", "Kind", "Confidence", "Warnings",
		"Employee", "Employer", "Gross / Box 1", "Net / Withheld",
	} {
		header.AddCell().SetString(h)
	}

	for _, r := range summary.Results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Path)
		row.AddCell().SetString(resultStatus(r))
		if r.Doc == nil {
			continue
		}
		row.AddCell().SetString(string(r.Doc.Kind))
		row.AddCell().SetFloat(r.Doc.Confidence)
		row.AddCell().SetInt(len(r.Doc.Warnings))

		employee, employer, primary, secondary := headlineFields(r.Doc)
		row.AddCell().SetString(employee)
		row.AddCell().SetString(employer)
		row.AddCell().SetString(primary)
		row.AddCell().SetString(secondary)
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func resultStatus(r pipeline.BatchResult) string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, model.ErrUnreadableDocument):
		return "unreadable"
	default:
		return "failed"
	}
}

// headlineFields picks the identity and headline money fields for the
// summary row, varying by document kind.
func headlineFields(doc *model.Document) (employee, employer, primary, secondary string) {
	switch {
	case doc.Paystub != nil:
		p := doc.Paystub
		employee = p.Employee.Name
		employer = p.Employer.CompanyName
		if p.GrossPayCurrent != nil {
			primary = p.GrossPayCurrent.String()
		}
		if p.NetPayCurrent != nil {
			secondary = p.NetPayCurrent.String()
		}
	case doc.W2 != nil:
		w := doc.W2
		employee = w.Employee.Name
		employer = w.Employer.Name
		if w.IncomeTaxInfo.WagesTipsCompensation != nil {
			primary = w.IncomeTaxInfo.WagesTipsCompensation.String()
		}
		if w.IncomeTaxInfo.FederalIncomeTaxWithheld != nil {
			secondary = w.IncomeTaxInfo.FederalIncomeTaxWithheld.String()
		}
	}
	return employee, employer, primary, secondary
}

func init() {
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "filter by document kind")
	rootCmd.AddCommand(exportCmd)
}
