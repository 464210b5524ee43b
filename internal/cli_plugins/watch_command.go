package cliplugins

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pollwatch/internal/config"
	"pollwatch/internal/journal"
	"pollwatch/internal/util/logger/sl"
	"pollwatch/pkg/watcher"
)

type WatchCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewWatchCommand(appCtx *AppContext) *WatchCommand {
	return &WatchCommand{appCtx: appCtx}
}

func (w *WatchCommand) Meta() *cobra.Command {
	if w.cmd != nil {
		return w.cmd
	}
	w.cmd = &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory tree and print changes",
		Long: "Polls the directory tree at a fixed interval and prints created, modified, " +
			"deleted and renamed entries until interrupted.",
		Args: cobra.MaximumNArgs(1),
	}
	addWatchFlags(w.cmd.Flags())
	w.cmd.Flags().Int("queue", 0, "deliver batches through a queue of this size")
	w.cmd.Flags().String("journal", "", "record batches in this bbolt file")
	w.cmd.Flags().StringP("format", "o", FormatText, "output format: text, json, fsnotify")
	w.cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return Formats, cobra.ShellCompDirectiveNoFileComp
	})
	return w.cmd
}

func (w *WatchCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	const op = "cliplugins.WatchCommand.Execute"
	log := w.appCtx.Log.With(slog.String("op", op))

	wc, err := watchConfigFromFlags(w.appCtx.Config.Watch, cmd.Flags(), args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("queue") {
		wc.QueueSize, _ = cmd.Flags().GetInt("queue")
	}
	journalPath := w.appCtx.Config.Journal.Path
	maxRecords := w.appCtx.Config.Journal.MaxRecords
	if cmd.Flags().Changed("journal") {
		journalPath, _ = cmd.Flags().GetString("journal")
	}
	format, _ := cmd.Flags().GetString("format")

	printer, err := NewEventPrinter(w.appCtx.Out, format, w.appCtx.Color)
	if err != nil {
		return err
	}

	var store journal.Store
	if journalPath != "" {
		j, err := journal.Open(journal.Config{Path: journalPath})
		if err != nil {
			return err
		}
		defer j.Close()
		store = j
	}

	builder, err := wc.Builder()
	if err != nil {
		return err
	}
	opts := builder.
		WithLogger(w.appCtx.Log).
		WithOnChanges(func(batch watcher.Batch) {
			if err := printer.PrintBatch(batch); err != nil {
				log.Error("failed to print batch", sl.Err(err))
			}
			if store == nil {
				return
			}
			if _, err := store.Append(batch); err != nil {
				log.Error("failed to record batch", slog.String("batch", batch.ID.String()), sl.Err(err))
				return
			}
			if removed, err := store.Prune(maxRecords); err != nil {
				log.Error("failed to prune journal", sl.Err(err))
			} else if removed > 0 {
				log.Debug("journal pruned", slog.Int("removed", removed))
			}
		}).
		Build()

	fw := watcher.NewWatcher(opts)
	if _, err := fw.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Close()

	log.Info("watching", slog.String("dir", fw.WatchedDir()), slog.Any("filter", fw.Filter()))

	for {
		select {
		case <-ctx.Done():
			if _, err := fw.Stop(); err != nil {
				return err
			}
			log.Debug("watcher metrics", slog.Any("stats", fw.Metrics().GetStats()))
			return nil
		case err := <-fw.Errors():
			log.Debug("scan error", sl.Err(err))
		}
	}
}

// addWatchFlags registers the flags shared by watch and scan.
func addWatchFlags(fs *pflag.FlagSet) {
	fs.StringP("filter", "f", "", "include patterns separated by ';' or ','")
	fs.StringP("ignore", "i", "", "ignore patterns separated by ';' or ','")
	fs.DurationP("interval", "n", 0, "poll interval")
	fs.String("notify", "", "notify filters, e.g. LastWrite,Size,FileName")
	fs.IntP("depth", "d", 0, "maximum recursion depth, -1 for unlimited")
}

// watchConfigFromFlags overlays explicitly set flags on the loaded config.
func watchConfigFromFlags(wc config.WatchConfig, fs *pflag.FlagSet, args []string) (config.WatchConfig, error) {
	if len(args) > 0 {
		wc.Root = args[0]
	}
	if fs.Changed("filter") {
		wc.Filter, _ = fs.GetString("filter")
	}
	if fs.Changed("ignore") {
		wc.Ignore, _ = fs.GetString("ignore")
	}
	if fs.Changed("interval") {
		wc.RefreshRate, _ = fs.GetDuration("interval")
	}
	if fs.Changed("notify") {
		wc.NotifyFilters, _ = fs.GetString("notify")
	}
	if fs.Changed("depth") {
		depth, _ := fs.GetInt("depth")
		wc.Depth = strconv.Itoa(depth)
	}
	if wc.Root == "" {
		return wc, fmt.Errorf("directory is required: pass it as an argument or set watch.root")
	}
	return wc, nil
}
