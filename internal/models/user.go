// Package models holds the records shared by the account and storage layers.
package models

// Provider identifies how a user signs in.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// Tier is the subscription level of an account.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

const (
	// GuestEmail is the fixed id of the guest pseudo-user. It never has a
	// directory entry.
	GuestEmail = "guest@dreamcatcher.app"

	// DefaultEssence is the dream essence balance of every new account.
	DefaultEssence = 20
)

// User is the full directory record, credentials included. It never leaves
// the account manager; use Public for anything shown to callers.
type User struct {
	Email            string   `json:"email"`
	Username         string   `json:"username"`
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	DOB              string   `json:"dob"`
	PasswordHash     string   `json:"passwordHash,omitempty"`
	Provider         Provider `json:"provider"`
	SubscriptionTier Tier     `json:"subscriptionTier"`
	DreamEssence     int      `json:"dreamEssence"`
}

// PublicUser is a User without its password hash.
type PublicUser struct {
	Email            string   `json:"email"`
	Username         string   `json:"username"`
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	DOB              string   `json:"dob"`
	Provider         Provider `json:"provider"`
	SubscriptionTier Tier     `json:"subscriptionTier"`
	DreamEssence     int      `json:"dreamEssence"`
}

// Public strips the credentials from u.
func (u User) Public() PublicUser {
	return PublicUser{
		Email:            u.Email,
		Username:         u.Username,
		Name:             u.Name,
		Surname:          u.Surname,
		DOB:              u.DOB,
		Provider:         u.Provider,
		SubscriptionTier: u.SubscriptionTier,
		DreamEssence:     u.DreamEssence,
	}
}

// IsGuest reports whether u is the guest pseudo-user.
func (u PublicUser) IsGuest() bool {
	return u.Email == GuestEmail
}

// Guest returns the guest record with the given balance.
func Guest(tier Tier, essence int) PublicUser {
	return PublicUser{
		Email:            GuestEmail,
		Username:         "guest",
		Name:             "Guest",
		Provider:         ProviderEmail,
		SubscriptionTier: tier,
		DreamEssence:     essence,
	}
}
