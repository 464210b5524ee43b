package cliplugins

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pollwatch/internal/util/logger/sl"
)

// ScanCommand prints a single snapshot, using the same traversal rules as
// the watch command.
type ScanCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewScanCommand(appCtx *AppContext) *ScanCommand {
	return &ScanCommand{appCtx: appCtx}
}

func (s *ScanCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "scan [dir]",
		Short: "Print one snapshot of a directory tree",
		Args:  cobra.MaximumNArgs(1),
	}
	addWatchFlags(s.cmd.Flags())
	s.cmd.Flags().Bool("json", false, "print entries as JSON")
	return s.cmd
}

func (s *ScanCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	const op = "cliplugins.ScanCommand.Execute"
	log := s.appCtx.Log.With(slog.String("op", op))

	wc, err := watchConfigFromFlags(s.appCtx.Config.Watch, cmd.Flags(), args)
	if err != nil {
		return err
	}

	builder, err := wc.Builder()
	if err != nil {
		return err
	}
	scanner, err := builder.Build().Scanner()
	if err != nil {
		return err
	}
	snap, errs := scanner.Scan()
	for _, err := range errs {
		log.Warn("skipped", sl.Err(err))
	}

	format := FormatText
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = FormatJSON
	}
	printer, err := NewEventPrinter(s.appCtx.Out, format, false)
	if err != nil {
		return err
	}
	if err := printer.PrintEntries(snap.Entries()); err != nil {
		return fmt.Errorf("failed to print snapshot: %w", err)
	}
	return nil
}
