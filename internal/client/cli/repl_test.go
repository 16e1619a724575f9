package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Keygen(ctx context.Context) error {
	f.calls = append(f.calls, "keygen")
	return nil
}
func (f *fakeExec) Keys(ctx context.Context) error { f.calls = append(f.calls, "keys"); return nil }
func (f *fakeExec) Send(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "send")
	f.args = args
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Fetch(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "fetch")
	f.args = args
	return nil
}
func (f *fakeExec) URL(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "url")
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "delete")
	return nil
}
func (f *fakeExec) History(ctx context.Context) error {
	f.calls = append(f.calls, "history")
	return nil
}
func (f *fakeExec) Whoami(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"keygen",
		"login",
		"help",
		"send secret.txt bob",
		"list",
		"fetch 42",
		"history",
		"whoami",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"keygen", "login", "send", "list", "fetch", "history", "whoami"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("calls: %+v", exec.calls)
	}
	for i, want := range wantOrder {
		if exec.calls[i] != want {
			t.Fatalf("call %d: got %q, want %q (%+v)", i, exec.calls[i], want, exec.calls)
		}
	}
	if len(exec.args) != 1 || exec.args[0] != "42" {
		t.Fatalf("fetch args: %+v", exec.args)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader(""))
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}
}

func TestRunREPL_SendArgsPassedThrough(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(strings.NewReader("send file.bin alice\nexit\n"))
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.args) != 2 || exec.args[0] != "file.bin" || exec.args[1] != "alice" {
		t.Fatalf("send args: %+v", exec.args)
	}
}
