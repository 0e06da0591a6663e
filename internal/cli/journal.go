package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/filex"
)

func (a *App) requireSession() error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	return nil
}

// Set stores a JSON value under key in the active namespace:
//
//	set dream-2026-10-16 {"title":"Flying","lucid":true}
func (a *App) Set(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: set <key> <json>")
	}
	raw := strings.Join(args[1:], " ")
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("value for %q is not valid JSON", args[0])
	}
	if err := a.store.Set(ctx, args[0], json.RawMessage(raw)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) Get(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: get <key>")
	}
	var v json.RawMessage
	if !a.store.Get(ctx, args[0], &v) {
		return fmt.Errorf("%s: %w", args[0], common.ErrorNotFound)
	}
	fmt.Fprintln(a.out, string(v))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <key>")
	}
	if err := a.store.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) Keys(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	keys, err := a.store.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(a.out, k)
	}
	return nil
}

// Export writes the namespace snapshot to a file, or prints it when no file
// is given.
func (a *App) Export(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	data, err := a.store.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, string(data))
		return nil
	}
	if err := filex.WriteFileAtomic(args[0], data, 0o600); err != nil {
		return fmt.Errorf("error writing %s: %w", args[0], err)
	}
	fmt.Fprintf(a.out, "Exported to %s\n", args[0])
	return nil
}

// Import replaces the namespace with the snapshot stored in a file.
func (a *App) Import(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: import <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}
	if err := a.store.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %s\n", args[0])
	return nil
}
