package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/filex"
)

// FileTarget keeps backups under <root>/<owner>/<name>.
type FileTarget struct {
	root string
}

var _ Target = (*FileTarget)(nil)

// NewFileTarget creates root if needed. A relative root is resolved against
// the working directory.
func NewFileTarget(root string) (*FileTarget, error) {
	dir, err := filex.EnsureSubdDir(root)
	if err != nil {
		return nil, err
	}
	return &FileTarget{root: dir}, nil
}

func (t *FileTarget) ownerDir(owner string) string {
	return filepath.Join(t.root, url.PathEscape(owner))
}

func (t *FileTarget) Put(_ context.Context, owner, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	dir, err := filex.EnsureSubdDir(t.ownerDir(owner))
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(filepath.Join(dir, name), data, 0o600)
}

func (t *FileTarget) Get(_ context.Context, owner, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(t.ownerDir(owner), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return data, nil
}

func (t *FileTarget) List(_ context.Context, owner string) ([]Info, error) {
	entries, err := os.ReadDir(t.ownerDir(owner))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || validName(e.Name()) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), CreatedAt: fi.ModTime()})
	}
	return out, nil
}
