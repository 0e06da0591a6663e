package vfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
)

// GetGlobal decodes the unscoped key into v. found is false when the key is
// absent. Unlike Get, read and decode failures are returned: callers of
// global keys must not mistake a corrupt document for an empty one.
func (s *Store) GetGlobal(ctx context.Context, key string, v any) (found bool, err error) {
	raw, err := s.sub.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetGlobal(ctx context.Context, key string, value any) error {
	return s.write(ctx, key, value)
}

func (s *Store) RemoveGlobal(ctx context.Context, key string) error {
	if err := s.sub.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "storage delete failed", "key", key, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	return nil
}
