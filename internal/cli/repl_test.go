package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failOn   string

	calls []string
	args  map[string][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	if name == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Signup(ctx context.Context) error { return f.record("signup", nil) }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Guest(ctx context.Context) error   { return f.record("guest", nil) }
func (f *fakeExec) Google(ctx context.Context) error  { return f.record("google", nil) }
func (f *fakeExec) Upgrade(ctx context.Context) error { return f.record("upgrade", nil) }
func (f *fakeExec) Whoami(ctx context.Context) error  { return f.record("whoami", nil) }
func (f *fakeExec) Profile(ctx context.Context) error { return f.record("profile", nil) }
func (f *fakeExec) Tier(ctx context.Context) error    { return f.record("tier", nil) }
func (f *fakeExec) Essence(ctx context.Context, args []string) error {
	return f.record("essence", args)
}
func (f *fakeExec) Set(ctx context.Context, args []string) error    { return f.record("set", args) }
func (f *fakeExec) Get(ctx context.Context, args []string) error    { return f.record("get", args) }
func (f *fakeExec) Remove(ctx context.Context, args []string) error { return f.record("rm", args) }
func (f *fakeExec) Keys(ctx context.Context) error                  { return f.record("keys", nil) }
func (f *fakeExec) Export(ctx context.Context, args []string) error { return f.record("export", args) }
func (f *fakeExec) Import(ctx context.Context, args []string) error { return f.record("import", args) }
func (f *fakeExec) Backup(ctx context.Context, args []string) error { return f.record("backup", args) }
func (f *fakeExec) DeleteAccount(ctx context.Context) error         { return f.record("delete-account", nil) }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"",
		"set dream {\"title\": \"sea\"}",
		"get dream",
		"rm dream",
		"keys",
		"essence add 5",
		"export out.json",
		"import out.json",
		"backup push",
		"tier",
		"whoami",
		"profile",
		"upgrade",
		"delete-account",
		"logout",
		"exit",
		"guest",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"login", "set", "get", "rm", "keys", "essence", "export", "import",
		"backup", "tier", "whoami", "profile", "upgrade", "delete-account", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"dream", "{\"title\":", "\"sea\"}"}, exec.args["set"])
	assert.Equal(t, []string{"add", "5"}, exec.args["essence"])
	assert.Equal(t, []string{"push"}, exec.args["backup"])
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewReader(strings.NewReader("help\n")))
	assert.Contains(t, *lines, helpSignedOut)

	*lines = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, bufio.NewReader(strings.NewReader("help\n")))
	assert.Contains(t, *lines, helpSignedIn)
}

func TestRunREPL_ReportsErrorsAndUnknownCommands(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{failOn: "keys"}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("keys\nfoobar\nquit\nlogin\n")))

	assert.Equal(t, []string{"keys"}, exec.calls)
	assert.Contains(t, *lines, "Error: boom")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("guest\nsignup")))

	assert.Equal(t, []string{"guest", "signup"}, exec.calls)
}
