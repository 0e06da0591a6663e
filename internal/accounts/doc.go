// Package accounts implements the session state machine and account
// lifecycle of Dream Catcher.
//
// Manager is the only writer of the user directory and the only code that
// moves the storage namespace between users. Callers see identities only as
// models.PublicUser; password hashes never leave the package.
//
// States:
//
//	Initializing --Restore--> Unauthenticated | Authenticated
//	Unauthenticated --Login|Signup|ContinueAsGuest|LoginWithGoogle--> Authenticated
//	Authenticated --Logout|DeleteAccount--> Unauthenticated
package accounts
