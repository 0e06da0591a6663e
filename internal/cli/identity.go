package cli

import (
	"bufio"
	"context"
	"io"
)

// promptIdentity stands in for an external sign-in screen: it asks the user
// for the account name and email the provider would return. Leaving the
// name empty cancels the sign-in.
type promptIdentity struct {
	reader *bufio.Reader
	w      io.Writer
}

func (p *promptIdentity) Identify(_ context.Context) (string, string, error) {
	name, err := getSimpleText(p.reader, "Google account name (empty to cancel)", p.w)
	if err != nil {
		return "", "", err
	}
	if name == "" {
		return "", "", nil
	}
	email, err := getSimpleText(p.reader, "Google account email", p.w)
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}
