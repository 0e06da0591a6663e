package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/dreamcatcher/internal/accounts"
	"github.com/dmitrijs2005/dreamcatcher/internal/backup"
	"github.com/dmitrijs2005/dreamcatcher/internal/config"
	"github.com/dmitrijs2005/dreamcatcher/internal/directory"
	"github.com/dmitrijs2005/dreamcatcher/internal/kv"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
	"github.com/dmitrijs2005/dreamcatcher/internal/session"
	"github.com/dmitrijs2005/dreamcatcher/internal/vfs"
)

// accountService is the account manager as seen by the CLI.
type accountService interface {
	State() accounts.State
	CurrentUser() (models.PublicUser, bool)
	Restore(ctx context.Context) error
	Login(ctx context.Context, email string, password []byte) (models.PublicUser, error)
	Signup(ctx context.Context, p accounts.Profile, password []byte) (models.PublicUser, error)
	ContinueAsGuest(ctx context.Context) (models.PublicUser, error)
	LoginWithGoogle(ctx context.Context) (models.PublicUser, error)
	UpgradeGuestAccount(ctx context.Context, p accounts.Profile, password []byte) (models.PublicUser, error)
	UpdateProfile(ctx context.Context, upd accounts.ProfileUpdate) (models.PublicUser, error)
	DeleteAccount(ctx context.Context) error
	Logout(ctx context.Context) error
	UpgradeTier(ctx context.Context) (models.PublicUser, error)
	AddEssence(ctx context.Context, n int) (models.PublicUser, error)
	UseEssence(ctx context.Context, n int) (bool, error)
}

// journal is the storage namespace as seen by the journal commands.
type journal interface {
	Get(ctx context.Context, key string, v any) bool
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) error
}

type backupService interface {
	Push(ctx context.Context, passphrase []byte) (string, error)
	Pull(ctx context.Context, name string, passphrase []byte) error
	List(ctx context.Context) ([]backup.Info, error)
}

var (
	_ accountService = (*accounts.Manager)(nil)
	_ journal        = (*vfs.Store)(nil)
	_ backupService  = (*backup.Service)(nil)
)

type App struct {
	log      logging.Logger
	accounts accountService
	store    journal
	backups  backupService
	reader   *bufio.Reader
	out      io.Writer
	closers  []io.Closer
}

// NewApp opens the storage substrate named by c and builds every layer on
// top of it. Call Close when done.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	a := &App{
		log:    logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if err := a.wire(ctx, c); err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Error(ctx, "failed to close after init error", "error", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, c *config.Config) error {
	handle, err := kv.Open(ctx, c.StorageDriver, c.StorageDSN, a.log)
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	a.closers = append(a.closers, handle)

	store := vfs.New(handle, c.KeyPrefix, a.log)
	a.store = store

	markers, err := a.markerStore(ctx, c, store)
	if err != nil {
		return err
	}

	secret := []byte(c.SessionSecret)
	if len(secret) == 0 {
		if secret, err = session.LoadOrCreateSecret(ctx, store); err != nil {
			return fmt.Errorf("error loading session secret: %w", err)
		}
	}
	keeper := session.NewKeeper(markers, session.NewTokens(secret, c.SessionTTL.Duration), a.log)

	idp := &promptIdentity{reader: a.reader, w: a.out}
	a.accounts = accounts.NewManager(store, directory.NewKVDirectory(store), keeper, idp, a.log)

	target, err := backupTarget(ctx, c)
	if err != nil {
		return err
	}
	a.backups = backup.NewService(store, target, a.log)
	return nil
}

func (a *App) markerStore(ctx context.Context, c *config.Config, store *vfs.Store) (session.MarkerStore, error) {
	if c.SessionBackend != config.SessionBackendRedis {
		return session.NewStoreMarkerStore(store), nil
	}
	rdb, err := session.NewRedis(ctx, c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	a.closers = append(a.closers, rdb)
	return session.NewRedisMarkerStore(rdb, c.KeyPrefix+"_session"), nil
}

func backupTarget(ctx context.Context, c *config.Config) (backup.Target, error) {
	if c.BackupTarget == config.BackupTargetS3 {
		client, err := backup.NewS3Client(ctx, backup.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating s3 client: %w", err)
		}
		return backup.NewS3Target(client, c.S3Bucket), nil
	}
	t, err := backup.NewFileTarget(c.BackupDir)
	if err != nil {
		return nil, fmt.Errorf("error preparing backup directory: %w", err)
	}
	return t, nil
}

// Close releases the substrate and the redis client, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run restores the previous session and serves the REPL until the user
// exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error(ctx, "error closing app", "error", err)
		}
	}()

	restoreCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := a.accounts.Restore(restoreCtx)
	cancel()
	if err != nil {
		a.log.Error(ctx, "session restore failed", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to Dream Catcher (type 'help' for commands)")
	if u, ok := a.accounts.CurrentUser(); ok {
		fmt.Fprintf(a.out, "Signed in as %s\n", displayName(u))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.accounts.State() == accounts.StateAuthenticated
}

func (a *App) getStatus() string {
	u, ok := a.accounts.CurrentUser()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s) ", displayName(u))
}

func displayName(u models.PublicUser) string {
	if u.IsGuest() {
		return "guest"
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
