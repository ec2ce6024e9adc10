// Package cli provides the statement-analyzer commands.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "1.0.0"

// runtime is what PersistentPreRunE prepares for the subcommands.
type runtime struct {
	envFile  string
	logLevel string
	cfg      *config.Config
	log      zerolog.Logger
}

// NewRootCommand builds the command tree. Command output goes to out and
// logs to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "statement-analyzer",
		Short: "Turn bank statements into a classified ledger",
		Long: `statement-analyzer extracts transactions from bank statement PDFs,
scans and plain text, classifies them and summarizes the ledger.

It supports:
- ICICI, HDFC and SBI layouts, plus a generic fallback
- Password-protected PDFs
- OCR of scanned statements (poppler + tesseract)
- CSV and XLSX exports, and an HTTP API

Example:
  statement-analyzer convert statement.pdf
  statement-analyzer convert --ocr --xlsx report.xlsx scan.pdf
  statement-analyzer serve --addr :8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rt.envFile)
			if err != nil {
				return err
			}
			if rt.logLevel != "" {
				cfg.LogLevel = rt.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logger.New(cfg.LogLevel)
			cmd.SetContext(logger.WithContext(cmd.Context(), rt.log))
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&rt.envFile, "config", "", "env file to load (default is .env when present)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(newConvertCommand(rt))
	root.AddCommand(newServeCommand(rt))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the command tree against os.Args. It is called by main.main().
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}
