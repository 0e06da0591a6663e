package accounts

import (
	"context"
	"math"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
)

// UpgradeTier moves the session user to the premium tier.
func (m *Manager) UpgradeTier(ctx context.Context) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.updateBalance(ctx, func(u *models.PublicUser) {
		u.SubscriptionTier = models.TierPremium
	})
	return m.user, err
}

// AddEssence credits n essence. Credits that would overflow the balance are
// rejected with common.ErrInvalidAmount.
func (m *Manager) AddEssence(ctx context.Context, n int) (models.PublicUser, error) {
	if n < 0 {
		return models.PublicUser{}, common.ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAuthenticated && n > math.MaxInt-m.user.DreamEssence {
		return m.user, common.ErrInvalidAmount
	}

	err := m.updateBalance(ctx, func(u *models.PublicUser) {
		u.DreamEssence += n
	})
	return m.user, err
}

// UseEssence debits n essence. It returns false, and changes nothing, when
// the balance is smaller than n.
func (m *Manager) UseEssence(ctx context.Context, n int) (bool, error) {
	if n < 0 {
		return false, common.ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		return false, common.ErrNotAuthenticated
	}
	if n > m.user.DreamEssence {
		m.log.Info(ctx, "essence debit declined", "email", m.user.Email, "balance", m.user.DreamEssence, "amount", n)
		return false, nil
	}

	err := m.updateBalance(ctx, func(u *models.PublicUser) {
		u.DreamEssence -= n
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateBalance applies fn to a copy of the session user, persists the tier
// and essence, and only then replaces the session copy.
func (m *Manager) updateBalance(ctx context.Context, fn func(u *models.PublicUser)) error {
	if m.state != StateAuthenticated {
		return common.ErrNotAuthenticated
	}

	next := m.user
	fn(&next)

	if next.IsGuest() {
		if err := m.saveGuest(ctx, next); err != nil {
			return err
		}
		m.user = next
		return nil
	}

	u, err := m.currentRecord(ctx)
	if err != nil {
		return err
	}
	u.SubscriptionTier = next.SubscriptionTier
	u.DreamEssence = next.DreamEssence
	if err := m.dir.Put(ctx, u); err != nil {
		return err
	}

	m.user = u.Public()
	return nil
}

// loadGuest reads the guest balance from the active guest namespace.
func (m *Manager) loadGuest(ctx context.Context) models.PublicUser {
	g := guestDefaults()

	var tier models.Tier
	if m.ns.Get(ctx, GuestTierKey, &tier) && (tier == models.TierFree || tier == models.TierPremium) {
		g.SubscriptionTier = tier
	}
	var essence int
	if m.ns.Get(ctx, GuestEssenceKey, &essence) && essence >= 0 {
		g.DreamEssence = essence
	}
	return g
}

// saveGuest writes the guest balance into the active guest namespace.
func (m *Manager) saveGuest(ctx context.Context, g models.PublicUser) error {
	if err := m.ns.Set(ctx, GuestTierKey, g.SubscriptionTier); err != nil {
		return err
	}
	return m.ns.Set(ctx, GuestEssenceKey, g.DreamEssence)
}
