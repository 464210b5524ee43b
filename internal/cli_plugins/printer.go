package cliplugins

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"pollwatch/internal/journal"
	"pollwatch/pkg/watcher"
)

const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatFsnotify = "fsnotify"
)

var Formats = []string{FormatText, FormatJSON, FormatFsnotify}

// EventPrinter writes batches to out in one of Formats.
type EventPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	colors map[watcher.Op]*color.Color
}

func NewEventPrinter(out io.Writer, format string, useColor bool) (*EventPrinter, error) {
	switch format {
	case FormatText, FormatJSON, FormatFsnotify:
	default:
		return nil, fmt.Errorf("unknown format %q, expected one of %v", format, Formats)
	}

	colors := map[watcher.Op]*color.Color{
		watcher.Created:  color.New(color.FgGreen, color.Bold),
		watcher.Modified: color.New(color.FgYellow),
		watcher.Deleted:  color.New(color.FgRed),
		watcher.Renamed:  color.New(color.FgCyan),
	}
	for _, c := range colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &EventPrinter{out: out, format: format, colors: colors}, nil
}

func (p *EventPrinter) PrintBatch(batch watcher.Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.format {
	case FormatJSON:
		return json.NewEncoder(p.out).Encode(journal.NewRecord(batch))
	case FormatFsnotify:
		for _, ev := range batch.FsnotifyEvents() {
			if _, err := fmt.Fprintln(p.out, ev.String()); err != nil {
				return err
			}
		}
		return nil
	}

	ts := batch.At.Format("15:04:05.000")
	for _, ev := range batch.Events {
		c := p.colors[ev.Op]
		for i, f := range ev.Files {
			line := fmt.Sprintf("%s %-8s %s", ts, ev.Op, f.Path)
			if ev.Op == watcher.Renamed {
				line = fmt.Sprintf("%s %-8s %s -> %s", ts, ev.Op, ev.Previous[i].Path, f.Path)
			}
			if _, err := c.Fprintln(p.out, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintEntries lists snapshot entries, one per line.
func (p *EventPrinter) PrintEntries(entries []watcher.FileEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == FormatJSON {
		return json.NewEncoder(p.out).Encode(entries)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(p.out, "%-4s %10d %s %s\n",
			e.Kind, e.Size, e.Modified.Format("2006-01-02 15:04:05"), e.Path); err != nil {
			return err
		}
	}
	return nil
}
