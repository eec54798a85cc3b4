package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"codelens/internal/intake"
	"codelens/internal/report"
)

type rootOptions struct {
	maxBytes int64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Inspect code-metrics reports offline",
		Long: `reportctl runs the gateway's report checks and views against a local file.

Examples:
  reportctl validate report.json
  reportctl levels report.json
  reportctl export report.json --format mermaid
  reportctl metrics report.json --view quality`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Int64Var(&opts.maxBytes, "max-bytes", intake.DefaultMaxUploadBytes, "upload size limit applied by validate and friends")

	root.AddCommand(
		newValidateCmd(opts),
		newLevelsCmd(opts),
		newExportCmd(opts),
		newMetricsCmd(opts),
	)
	return root
}

// loadReport applies the same checks as a file upload.
func (o *rootOptions) loadReport(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return intake.NewFileIntake(nil, o.maxBytes).Parse(intake.Upload{
		Name: filepath.Base(path),
		Size: info.Size(),
		Body: f,
	})
}
