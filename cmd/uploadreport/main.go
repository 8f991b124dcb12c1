// Package main implements uploadreport, a command that stores one local sales
// report file in the configured blob storage and prints its object key.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"alcyxob/sales-reports/internal/config"
	"alcyxob/sales-reports/internal/logging"
	"alcyxob/sales-reports/internal/service"
	"alcyxob/sales-reports/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Exit codes for the uploadreport CLI.
const (
	exitSuccess       = 0
	exitConfigError   = 1 // Missing or invalid configuration or usage; fix before retrying
	exitFileError     = 2 // Local file unreadable
	exitTransferError = 3 // Storage rejected or could not complete the write; retry with backoff
)

// errConfig marks errors that happen before an upload is attempted.
var errConfig = errors.New("configuration error")

// serviceFactory builds the upload service from the config directory.
type serviceFactory func(ctx context.Context, configDir string) (service.ReportService, func(), error)

func newRootCmd(factory serviceFactory, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uploadreport --vendor <id> <file>",
		Short: "Upload a vendor sales report to blob storage",
		Long: `Uploads one local file to sales_reports/{vendor}/{timestamp}.csv in the
configured bucket. The upload is attempted exactly once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			vendorID, err := cmd.Flags().GetString("vendor")
			if err != nil {
				return err
			}
			if vendorID == "" {
				return fmt.Errorf("%w: --vendor is required", errConfig)
			}
			configDir, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			svc, cleanup, err := factory(cmd.Context(), configDir)
			if err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}
			defer cleanup()

			report, err := svc.UploadSalesReportFile(cmd.Context(), vendorID, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, report.ObjectKey)
			return err
		},
	}
	cmd.Flags().StringP("vendor", "v", "", "Vendor identifier (used verbatim in the object key)")
	cmd.Flags().StringP("config", "c", ".", "Directory containing config.yaml")
	return cmd
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, service.ErrFileRead):
		return exitFileError
	case errors.Is(err, service.ErrStorageTransfer):
		return exitTransferError
	default:
		return exitConfigError
	}
}

// newService wires the upload service from configuration. Metadata is not
// recorded from the CLI.
func newService(ctx context.Context, configDir string) (service.ReportService, func(), error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log.Level)

	fileStorage, err := storage.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	svc := service.NewReportService(fileStorage, nil, nil, logger)
	return svc, func() { _ = logger.Sync() }, nil
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(newService, os.Stdout).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	stop()
	os.Exit(exitCode(err))
}
