package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
)

// Keeper remembers which user is signed in across restarts.
type Keeper struct {
	store  MarkerStore
	tokens *Tokens
	log    logging.Logger
}

func NewKeeper(store MarkerStore, tokens *Tokens, logger logging.Logger) *Keeper {
	return &Keeper{store: store, tokens: tokens, log: logger}
}

// Remember replaces the marker with one for email.
func (k *Keeper) Remember(ctx context.Context, email string) error {
	marker, err := k.tokens.Issue(email)
	if err != nil {
		return err
	}
	return k.store.Save(ctx, marker, k.tokens.TTL())
}

// Recall returns the email of the remembered session. A missing marker gives
// ok == false. An invalid or expired one is cleared and also gives
// ok == false; only store failures are errors.
func (k *Keeper) Recall(ctx context.Context) (email string, ok bool, err error) {
	marker, found, err := k.store.Load(ctx)
	if err != nil || !found {
		return "", false, err
	}

	email, err = k.tokens.Parse(marker)
	if errors.Is(err, common.ErrInvalidSession) {
		k.log.Warn(ctx, "discarding session marker", "error", err)
		if cerr := k.store.Clear(ctx); cerr != nil {
			k.log.Error(ctx, "failed to clear session marker", "error", cerr)
		}
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return email, true, nil
}

func (k *Keeper) Forget(ctx context.Context) error {
	return k.store.Clear(ctx)
}
