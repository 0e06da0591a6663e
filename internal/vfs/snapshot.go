package vfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/kv"
)

// ParseSnapshot validates an export document and returns its entries with
// each value compacted. Anything but a top-level JSON object is rejected
// with common.ErrInvalidBackupFormat.
func ParseSnapshot(data []byte) (map[string][]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidBackupFormat, err)
	}
	if doc == nil {
		return nil, common.ErrInvalidBackupFormat
	}

	out := make(map[string][]byte, len(doc))
	for k, v := range doc {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", common.ErrInvalidBackupFormat, k, err)
		}
		out[k] = buf.Bytes()
	}
	return out, nil
}

// ImportSnapshot replaces the active namespace with the contents of data.
//
// The document is parsed in full before anything is touched. On a
// transactional substrate the wipe and the writes commit together; otherwise
// they run in order and a failure reports how many keys were written.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	entries, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	return s.ImportEntries(ctx, entries)
}

// ImportEntries is ImportSnapshot for a document already parsed with
// ParseSnapshot.
func (s *Store) ImportEntries(ctx context.Context, entries map[string][]byte) error {
	id, ok := s.ActiveUser()
	if !ok {
		return fmt.Errorf("import: %w", common.ErrNotAuthenticated)
	}
	ns := s.namespace(id)

	apply := func(ctx context.Context, sub kv.Substrate) (int, error) {
		if _, err := sub.DeletePrefix(ctx, ns); err != nil {
			return 0, fmt.Errorf("wipe: %w", err)
		}
		written := 0
		for k, v := range entries {
			if err := sub.Set(ctx, ns+k, v); err != nil {
				return written, fmt.Errorf("write %q: %w", k, err)
			}
			written++
		}
		return written, nil
	}

	if tx, ok := s.sub.(kv.Transactional); ok {
		err := tx.InTx(ctx, func(ctx context.Context, sub kv.Substrate) error {
			_, err := apply(ctx, sub)
			return err
		})
		if err != nil {
			s.log.Error(ctx, "import rolled back", "user", id, "error", err)
			return fmt.Errorf("%w: import rolled back: %w", common.ErrStorageWrite, err)
		}
	} else {
		written, err := apply(ctx, s.sub)
		if err != nil {
			s.log.Error(ctx, "import incomplete", "user", id, "written", written, "total", len(entries), "error", err)
			return fmt.Errorf("%w: import stopped after %d of %d keys: %w",
				common.ErrStorageWrite, written, len(entries), err)
		}
	}

	s.log.Info(ctx, "snapshot imported", "user", id, "keys", len(entries))
	return nil
}
