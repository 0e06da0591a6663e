// Package backup copies namespace snapshots to and from a backup target: a
// directory on disk or an S3 bucket. Snapshots can be sealed with a
// passphrase.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/cryptox"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/google/uuid"
)

const (
	plainExt     = ".json"
	encryptedExt = ".json.enc"

	envelopeVersion = 1
)

var ErrPassphraseRequired = errors.New("backup is encrypted, a passphrase is required")

// Info describes a stored backup.
type Info struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

func (i Info) Encrypted() bool { return strings.HasSuffix(i.Name, encryptedExt) }

// Target stores backup blobs per owner. Get returns common.ErrorNotFound for
// unknown names.
type Target interface {
	Put(ctx context.Context, owner, name string, data []byte) error
	Get(ctx context.Context, owner, name string) ([]byte, error)
	List(ctx context.Context, owner string) ([]Info, error)
}

// Namespace is the part of the storage namespace layer a backup touches.
type Namespace interface {
	ActiveUser() (string, bool)
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) error
}

type Service struct {
	ns     Namespace
	target Target
	log    logging.Logger
	now    func() time.Time
}

func NewService(ns Namespace, target Target, logger logging.Logger) *Service {
	return &Service{ns: ns, target: target, log: logger, now: time.Now}
}

// envelope is the on-target format of an encrypted snapshot.
type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func (s *Service) owner() (string, error) {
	id, ok := s.ns.ActiveUser()
	if !ok {
		return "", common.ErrNotAuthenticated
	}
	return id, nil
}

// Push stores a snapshot of the active namespace and returns its name. A
// non-empty passphrase encrypts it.
func (s *Service) Push(ctx context.Context, passphrase []byte) (string, error) {
	owner, err := s.owner()
	if err != nil {
		return "", err
	}

	snap, err := s.ns.ExportSnapshot(ctx)
	if err != nil {
		return "", err
	}

	name := s.now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()
	data := snap
	if len(passphrase) > 0 {
		data, err = seal(snap, passphrase)
		if err != nil {
			return "", err
		}
		name += encryptedExt
	} else {
		name += plainExt
	}

	if err := s.target.Put(ctx, owner, name, data); err != nil {
		return "", fmt.Errorf("failed to store backup %s: %w", name, err)
	}
	s.log.Info(ctx, "backup stored", "owner", owner, "name", name, "bytes", len(data))
	return name, nil
}

// Pull replaces the active namespace with the backup called name.
func (s *Service) Pull(ctx context.Context, name string, passphrase []byte) error {
	owner, err := s.owner()
	if err != nil {
		return err
	}

	data, err := s.target.Get(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("failed to load backup %s: %w", name, err)
	}

	if strings.HasSuffix(name, encryptedExt) {
		if len(passphrase) == 0 {
			return ErrPassphraseRequired
		}
		data, err = unseal(data, passphrase)
		if err != nil {
			return err
		}
	}

	if err := s.ns.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	s.log.Info(ctx, "backup restored", "owner", owner, "name", name)
	return nil
}

// List returns the active user's backups, oldest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	owner, err := s.owner()
	if err != nil {
		return nil, err
	}
	infos, err := s.target.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func seal(snap, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.EncryptEntry(json.RawMessage(snap), key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt backup: %w", err)
	}
	return json.Marshal(envelope{
		Version:    envelopeVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
}

func unseal(data, passphrase []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidBackupFormat, err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", common.ErrInvalidBackupFormat, env.Version)
	}

	key := cryptox.DeriveKey(passphrase, env.Salt)
	defer common.WipeByteArray(key)

	var snap json.RawMessage
	if err := cryptox.DecryptEntry(env.Ciphertext, env.Nonce, key, &snap); err != nil {
		if errors.Is(err, cryptox.ErrMalformedCiphertext) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidBackupFormat, err)
		}
		return nil, fmt.Errorf("failed to decrypt backup (wrong passphrase?): %w", err)
	}
	return snap, nil
}

// validName rejects names that could escape the owner's folder.
func validName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return nil
}
