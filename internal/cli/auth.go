package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/accounts"
	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readProfile prompts for the registration form.
func (a *App) readProfile() (accounts.Profile, error) {
	var p accounts.Profile
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter email", &p.Email},
		{"Enter username", &p.Username},
		{"Enter first name (optional)", &p.Name},
		{"Enter surname (optional)", &p.Surname},
		{"Enter date of birth, YYYY-MM-DD (optional)", &p.DOB},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return accounts.Profile{}, err
		}
		*f.dst = v
	}
	return p, nil
}

func (a *App) welcome(u models.PublicUser) {
	fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
}

// Signup prompts for a profile and a password and registers a new email
// account. The password is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	p, err := a.readProfile()
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.accounts.Signup(ctx, p, password)
	if err != nil {
		return err
	}
	a.welcome(u)
	return nil
}

// Login prompts for credentials and signs in with email and password.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.accounts.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.welcome(u)
	return nil
}

func (a *App) Guest(ctx context.Context) error {
	if _, err := a.accounts.ContinueAsGuest(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Continuing as guest. Guest data is erased on logout; use 'upgrade' to keep it.")
	return nil
}

func (a *App) Google(ctx context.Context) error {
	u, err := a.accounts.LoginWithGoogle(ctx)
	if err != nil {
		return err
	}
	a.welcome(u)
	return nil
}

// Upgrade turns the guest session into a registered account, carrying the
// guest's data and balance over.
func (a *App) Upgrade(ctx context.Context) error {
	if u, ok := a.accounts.CurrentUser(); !ok || !u.IsGuest() {
		return common.ErrNotGuest
	}
	p, err := a.readProfile()
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.accounts.UpgradeGuestAccount(ctx, p, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created, your guest data has been kept.")
	a.welcome(u)
	return nil
}

func (a *App) Whoami(_ context.Context) error {
	u, ok := a.accounts.CurrentUser()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Name:     %s %s\n", u.Name, u.Surname)
	if u.DOB != "" {
		fmt.Fprintf(a.out, "Born:     %s\n", u.DOB)
	}
	fmt.Fprintf(a.out, "Provider: %s\n", u.Provider)
	fmt.Fprintf(a.out, "Tier:     %s\n", u.SubscriptionTier)
	fmt.Fprintf(a.out, "Essence:  %d\n", u.DreamEssence)
	return nil
}

// Profile prompts for new profile values; empty answers keep the old ones.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	var upd accounts.ProfileUpdate
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"New username (empty to keep)", &upd.Username},
		{"New first name (empty to keep)", &upd.Name},
		{"New surname (empty to keep)", &upd.Surname},
		{"New date of birth (empty to keep)", &upd.DOB},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if _, err := a.accounts.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// DeleteAccount asks for confirmation, then removes the account and all of
// its data.
func (a *App) DeleteAccount(ctx context.Context) error {
	u, ok := a.accounts.CurrentUser()
	if !ok {
		return common.ErrNotAuthenticated
	}
	if u.IsGuest() {
		fmt.Fprintln(a.out, "The guest account cannot be deleted; use 'logout' to erase guest data.")
		return nil
	}
	yes, err := confirm(a.reader, fmt.Sprintf("Delete %s and all of its data?", u.Email), a.out)
	if err != nil {
		return err
	}
	if !yes {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.accounts.DeleteAccount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
