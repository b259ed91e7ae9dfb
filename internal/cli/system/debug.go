package system

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/config"
	"github.com/julianstephens/fitlog/internal/lockfile"
)

type DebugCmd struct {
	Paths     DebugPathsCmd     `cmd:"" help:"Show file locations."`
	DumpQueue DebugDumpQueueCmd `cmd:"" help:"Dump the outbox as JSON."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	return writeJSON(ctx, map[string]string{
		"config":   config.Path(ctx.ConfigDir),
		"database": ctx.Store.Path(),
		"logs":     filepath.Join(ctx.ConfigDir, "logs"),
		"lockfile": lockfile.DefaultPath(ctx.ConfigDir),
	})
}

type queuedEntry struct {
	ID        int64           `json:"id"`
	Table     string          `json:"table"`
	Action    string          `json:"action"`
	XPGained  int64           `json:"xp_gained"`
	CreatedAt string          `json:"created_at"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// DebugDumpQueueCmd prints every queued outbox row, flagging rows whose
// payload no longer decodes.
type DebugDumpQueueCmd struct{}

func (cmd *DebugDumpQueueCmd) Run(ctx *cli.Context) error {
	records, err := ctx.Store.PendingEntries()
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}
	out := make([]queuedEntry, 0, len(records))
	for _, r := range records {
		e := queuedEntry{
			ID:        r.ID,
			Table:     string(r.Table),
			Action:    string(r.Action),
			XPGained:  r.XPGained,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if json.Valid(r.Data) {
			e.Data = r.Data
		}
		if _, err := r.Entry(); err != nil {
			e.Error = err.Error()
		}
		out = append(out, e)
	}
	return writeJSON(ctx, out)
}

func writeJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.Out, string(b))
	return nil
}
