package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/dreamcatcher/internal/backup"
	"github.com/dmitrijs2005/dreamcatcher/internal/common"
)

var getSecret = GetSecret

// Backup dispatches "backup push", "backup pull <name>" and "backup list".
func (a *App) Backup(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: backup push|pull <name>|list")
	}

	switch args[0] {
	case "push":
		return a.backupPush(ctx)
	case "pull":
		if len(args) != 2 {
			return fmt.Errorf("usage: backup pull <name>")
		}
		return a.backupPull(ctx, args[1])
	case "list", "ls":
		return a.backupList(ctx)
	}
	return fmt.Errorf("usage: backup push|pull <name>|list")
}

func (a *App) backupPush(ctx context.Context) error {
	passphrase, err := getSecret(a.out, "Backup passphrase (empty for none): ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	name, err := a.backups.Push(ctx, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup stored as %s\n", name)
	return nil
}

func (a *App) backupPull(ctx context.Context, name string) error {
	var passphrase []byte
	if (backup.Info{Name: name}).Encrypted() {
		var err error
		if passphrase, err = getSecret(a.out, "Backup passphrase: "); err != nil {
			return err
		}
		defer common.WipeByteArray(passphrase)
	}

	if err := a.backups.Pull(ctx, name, passphrase); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("backup %s: %w", name, err)
		}
		return err
	}
	fmt.Fprintf(a.out, "Restored %s\n", name)
	return nil
}

func (a *App) backupList(ctx context.Context) error {
	items, err := a.backups.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No backups")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tCREATED\tENCRYPTED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Name, it.Size, it.CreatedAt.Format("2006-01-02 15:04:05"), yesNo(it.Encrypted()))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
