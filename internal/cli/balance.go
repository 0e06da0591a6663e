package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
)

func (a *App) Tier(ctx context.Context) error {
	u, err := a.accounts.UpgradeTier(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Subscription tier: %s\n", u.SubscriptionTier)
	return nil
}

// Essence prints the dream essence balance, or changes it with
// "add <n>" and "use <n>".
func (a *App) Essence(ctx context.Context, args []string) error {
	u, ok := a.accounts.CurrentUser()
	if !ok {
		return common.ErrNotAuthenticated
	}
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Dream essence: %d\n", u.DreamEssence)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: essence [add|use <n>]")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	switch args[0] {
	case "add":
		u, err = a.accounts.AddEssence(ctx, n)
		if err != nil {
			return err
		}
	case "use":
		ok, err := a.accounts.UseEssence(ctx, n)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(a.out, "Not enough dream essence (have %d, need %d)\n", u.DreamEssence, n)
			return nil
		}
		u, _ = a.accounts.CurrentUser()
	default:
		return fmt.Errorf("usage: essence [add|use <n>]")
	}
	fmt.Fprintf(a.out, "Dream essence: %d\n", u.DreamEssence)
	return nil
}
