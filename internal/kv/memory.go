package kv

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
)

// MemorySubstrate keeps everything in a map guarded by a mutex. Nothing
// survives the process; it backs tests and the "memory" storage driver.
type MemorySubstrate struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Handle = (*MemorySubstrate)(nil)

func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{data: make(map[string][]byte)}
}

func (m *MemorySubstrate) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memMap(m.data).Get(ctx, key)
}

func (m *MemorySubstrate) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memMap(m.data).Set(ctx, key, value)
}

func (m *MemorySubstrate) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memMap(m.data).Delete(ctx, key)
}

func (m *MemorySubstrate) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memMap(m.data).List(ctx, prefix)
}

func (m *MemorySubstrate) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memMap(m.data).DeletePrefix(ctx, prefix)
}

// InTx runs fn against a private copy of the data and swaps it in when fn
// succeeds. The substrate stays locked for the duration of fn.
func (m *MemorySubstrate) InTx(ctx context.Context, fn func(ctx context.Context, tx Substrate) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := maps.Clone(m.data)
	if err := fn(ctx, memMap(work)); err != nil {
		return err
	}
	m.data = work
	return nil
}

func (m *MemorySubstrate) Close() error { return nil }

// memMap is the unlocked implementation shared by MemorySubstrate and its
// transactions.
type memMap map[string][]byte

func (d memMap) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := d[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), v...), nil
}

func (d memMap) Set(_ context.Context, key string, value []byte) error {
	d[key] = append([]byte(nil), value...)
	return nil
}

func (d memMap) Delete(_ context.Context, key string) error {
	delete(d, key)
	return nil
}

func (d memMap) List(_ context.Context, prefix string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for k, v := range d {
		if strings.HasPrefix(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (d memMap) DeletePrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for k := range d {
		if strings.HasPrefix(k, prefix) {
			delete(d, k)
			n++
		}
	}
	return n, nil
}
