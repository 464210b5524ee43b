package cliplugins

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"pollwatch/internal/journal"
)

type JournalCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewJournalCommand(appCtx *AppContext) *JournalCommand {
	return &JournalCommand{appCtx: appCtx}
}

func (j *JournalCommand) Meta() *cobra.Command {
	if j.cmd != nil {
		return j.cmd
	}
	j.cmd = &cobra.Command{
		Use:   "journal",
		Short: "Show recorded change batches",
		Args:  cobra.NoArgs,
	}
	j.cmd.Flags().StringP("path", "p", "", "journal file (defaults to journal.path)")
	j.cmd.Flags().IntP("limit", "l", 20, "number of batches to show, 0 for all")
	j.cmd.Flags().Bool("json", false, "print records as JSON")
	j.cmd.Flags().Int("keep", 0, "delete all but the newest N batches before listing")
	return j.cmd
}

func (j *JournalCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	path := j.appCtx.Config.Journal.Path
	if cmd.Flags().Changed("path") {
		path, _ = cmd.Flags().GetString("path")
	}
	if path == "" {
		return fmt.Errorf("flag --path is required")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("flag --limit failed")
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := journal.Open(journal.Config{Path: path})
	if err != nil {
		return err
	}
	defer store.Close()

	if keep, _ := cmd.Flags().GetInt("keep"); keep > 0 {
		removed, err := store.Prune(keep)
		if err != nil {
			return err
		}
		j.appCtx.Log.Info("journal pruned", slog.Int("removed", removed), slog.Int("kept", keep))
	}

	records, err := store.List(limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if asJSON {
		return json.NewEncoder(j.appCtx.Out).Encode(records)
	}

	for _, r := range records {
		fmt.Fprintf(j.appCtx.Out, "#%d %s seq=%d %s\n", r.Key, r.At.Format("2006-01-02 15:04:05.000"), r.Seq, r.Root)
		for _, ev := range r.Events {
			if len(ev.OldPaths) == len(ev.Paths) && len(ev.OldPaths) > 0 {
				for i := range ev.Paths {
					fmt.Fprintf(j.appCtx.Out, "  %-8s %s -> %s\n", ev.Op, ev.OldPaths[i], ev.Paths[i])
				}
				continue
			}
			fmt.Fprintf(j.appCtx.Out, "  %-8s %s\n", ev.Op, strings.Join(ev.Paths, ", "))
		}
	}
	return nil
}
