package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/cryptox"
	"github.com/dmitrijs2005/dreamcatcher/internal/directory"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
)

// Manager serialises its operations with a mutex.
type Manager struct {
	ns     Namespace
	dir    directory.UserDirectory
	keeper SessionKeeper
	idp    IdentityProvider
	log    logging.Logger

	mu    sync.Mutex
	state State
	user  models.PublicUser
}

// NewManager returns a manager in StateInitializing; call Restore next.
func NewManager(ns Namespace, dir directory.UserDirectory, keeper SessionKeeper, idp IdentityProvider, logger logging.Logger) *Manager {
	return &Manager{
		ns:     ns,
		dir:    dir,
		keeper: keeper,
		idp:    idp,
		log:    logger,
		state:  StateInitializing,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the signed-in user, if any.
func (m *Manager) CurrentUser() (models.PublicUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.state == StateAuthenticated
}

// Restore rebuilds the session remembered by the session keeper. Missing,
// expired and dangling markers end in StateUnauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok, err := m.keeper.Recall(ctx)
	if err != nil {
		m.setUnauthenticated()
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok {
		m.setUnauthenticated()
		return nil
	}

	if email == models.GuestEmail {
		m.ns.SetActiveUser(models.GuestEmail)
		m.user = m.loadGuest(ctx)
		m.state = StateAuthenticated
		m.log.Info(ctx, "guest session restored")
		return nil
	}

	u, found, err := m.dir.Get(ctx, email)
	if err != nil {
		m.setUnauthenticated()
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !found {
		m.log.Warn(ctx, "session refers to an unknown user", "email", email)
		if err := m.keeper.Forget(ctx); err != nil {
			m.log.Error(ctx, "failed to clear session marker", "error", err)
		}
		m.setUnauthenticated()
		return nil
	}

	m.user = u.Public()
	m.state = StateAuthenticated
	m.ns.SetActiveUser(email)
	m.log.Info(ctx, "session restored", "email", email)
	return nil
}

// Login signs in an email-provider account.
func (m *Manager) Login(ctx context.Context, email string, password []byte) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, found, err := m.dir.Get(ctx, email)
	if err != nil {
		return models.PublicUser{}, err
	}
	if !found {
		return models.PublicUser{}, common.ErrInvalidCredentials
	}
	if u.Provider == models.ProviderGoogle {
		return models.PublicUser{}, common.ErrWrongProvider
	}
	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		m.log.Info(ctx, "login rejected", "email", email)
		return models.PublicUser{}, common.ErrInvalidCredentials
	}

	m.authenticate(ctx, u.Public())
	return m.user, nil
}

// Signup registers an email-provider account and signs it in.
func (m *Manager) Signup(ctx context.Context, p Profile, password []byte) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.newEmailUser(ctx, p, password, models.TierFree, models.DefaultEssence)
	if err != nil {
		return models.PublicUser{}, err
	}
	if err := m.dir.Put(ctx, u); err != nil {
		return models.PublicUser{}, err
	}

	m.log.Info(ctx, "account created", "email", u.Email, "provider", u.Provider)
	m.authenticate(ctx, u.Public())
	return m.user, nil
}

// ContinueAsGuest signs in the guest with the default balance. The directory
// is not touched.
func (m *Manager) ContinueAsGuest(ctx context.Context) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guest := guestDefaults()
	m.ns.SetActiveUser(models.GuestEmail)
	if err := m.saveGuest(ctx, guest); err != nil {
		m.ns.ClearActiveUser()
		return models.PublicUser{}, err
	}

	m.authenticate(ctx, guest)
	return m.user, nil
}

// LoginWithGoogle signs in through the identity provider, creating a
// google-provider account on first use.
func (m *Manager) LoginWithGoogle(ctx context.Context) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, email, err := m.idp.Identify(ctx)
	if err != nil {
		return models.PublicUser{}, err
	}
	if name == "" || email == "" {
		return models.PublicUser{}, common.ErrCancelled
	}
	if email == models.GuestEmail {
		return models.PublicUser{}, common.ErrProviderConflict
	}

	u, found, err := m.dir.Get(ctx, email)
	if err != nil {
		return models.PublicUser{}, err
	}
	if found && u.Provider != models.ProviderGoogle {
		return models.PublicUser{}, common.ErrProviderConflict
	}
	if !found {
		u = models.User{
			Email:            email,
			Username:         name,
			Name:             name,
			Provider:         models.ProviderGoogle,
			SubscriptionTier: models.TierFree,
			DreamEssence:     models.DefaultEssence,
		}
		if err := m.dir.Put(ctx, u); err != nil {
			return models.PublicUser{}, err
		}
		m.log.Info(ctx, "account created", "email", email, "provider", u.Provider)
	}

	m.authenticate(ctx, u.Public())
	return m.user, nil
}

// UpdateProfile merges the non-empty fields of upd into the session and the
// directory. It does nothing for the guest.
func (m *Manager) UpdateProfile(ctx context.Context, upd ProfileUpdate) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		return models.PublicUser{}, common.ErrNotAuthenticated
	}
	if m.user.IsGuest() {
		return m.user, nil
	}

	u, err := m.currentRecord(ctx)
	if err != nil {
		return models.PublicUser{}, err
	}
	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.Name != "" {
		u.Name = upd.Name
	}
	if upd.Surname != "" {
		u.Surname = upd.Surname
	}
	if upd.DOB != "" {
		u.DOB = upd.DOB
	}
	if err := m.dir.Put(ctx, u); err != nil {
		return models.PublicUser{}, err
	}

	m.user = u.Public()
	return m.user, nil
}

// DeleteAccount wipes the user's namespace, removes the directory entry and
// signs out. It does nothing for the guest.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		return common.ErrNotAuthenticated
	}
	if m.user.IsGuest() {
		return nil
	}

	if err := m.ns.DeleteUserPermanently(ctx, m.dir); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	m.log.Info(ctx, "account deleted", "email", m.user.Email)
	return m.logout(ctx)
}

// Logout ends the session. The guest namespace is wiped first.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logout(ctx)
}

func (m *Manager) logout(ctx context.Context) error {
	var errs []error
	if m.state == StateAuthenticated && m.user.IsGuest() {
		if err := m.ns.ClearUser(ctx, models.GuestEmail); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.keeper.Forget(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear session marker: %w", err))
	}
	if m.state == StateAuthenticated {
		m.log.Info(ctx, "signed out", "email", m.user.Email)
	}
	m.setUnauthenticated()
	return errors.Join(errs...)
}

// authenticate makes u the session user. A failure to persist the session
// marker only costs the restore on next start, so it is logged.
func (m *Manager) authenticate(ctx context.Context, u models.PublicUser) {
	m.user = u
	m.state = StateAuthenticated
	m.ns.SetActiveUser(u.Email)

	if err := m.keeper.Remember(ctx, u.Email); err != nil {
		m.log.Warn(ctx, "failed to persist session marker", "email", u.Email, "error", err)
	}
}

func (m *Manager) setUnauthenticated() {
	m.user = models.PublicUser{}
	m.state = StateUnauthenticated
	m.ns.ClearActiveUser()
}

// newEmailUser validates p against the directory and builds the record.
func (m *Manager) newEmailUser(ctx context.Context, p Profile, password []byte, tier models.Tier, essence int) (models.User, error) {
	if p.Email == "" || p.Username == "" {
		return models.User{}, common.ErrInvalidProfile
	}

	if p.Email == models.GuestEmail {
		return models.User{}, common.ErrEmailTaken
	}
	_, taken, err := m.dir.Get(ctx, p.Email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, common.ErrEmailTaken
	}

	taken, err = m.dir.UsernameExists(ctx, p.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, common.ErrUsernameTaken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		Email:            p.Email,
		Username:         p.Username,
		Name:             p.Name,
		Surname:          p.Surname,
		DOB:              p.DOB,
		PasswordHash:     hash,
		Provider:         models.ProviderEmail,
		SubscriptionTier: tier,
		DreamEssence:     essence,
	}, nil
}

func (m *Manager) currentRecord(ctx context.Context) (models.User, error) {
	u, found, err := m.dir.Get(ctx, m.user.Email)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("directory entry for %s: %w", m.user.Email, common.ErrorNotFound)
	}
	return u, nil
}
