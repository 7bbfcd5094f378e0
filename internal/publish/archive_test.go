package publish_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"exchangerates/internal/publish"
)

// fakeGit writes a script that appends its arguments to a log file and
// exits with code.
func fakeGit(t *testing.T, code int) (bin, log string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	log = filepath.Join(dir, "calls.log")
	bin = filepath.Join(dir, "git")
	script := "#!/bin/sh\necho \"$@\" >> " + log + "\nexit " + string(rune('0'+code)) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, log
}

func TestGit_CommitAndPushInvocations(t *testing.T) {
	t.Parallel()

	bin, log := fakeGit(t, 0)
	g := &publish.Git{Dir: "/srv/rates", Remote: "upstream", Branch: "main", Binary: bin}

	require.NoError(t, g.Commit(t.Context(), "/srv/rates", "exchange rates as of [now]"))
	require.NoError(t, g.Push(t.Context()))

	b, err := os.ReadFile(log)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Equal(t, []string{
		"-C /srv/rates add --all .",
		"-C /srv/rates commit -m exchange rates as of [now]",
		"-C /srv/rates push upstream main",
	}, lines)
}

func TestGit_DefaultsRemoteAndBranch(t *testing.T) {
	t.Parallel()

	bin, log := fakeGit(t, 0)
	g := &publish.Git{Dir: "out", Binary: bin}
	require.NoError(t, g.Push(t.Context()))

	b, err := os.ReadFile(log)
	require.NoError(t, err)
	require.Equal(t, "-C out push origin master\n", string(b))
}

func TestGit_NonZeroExitIsAnError(t *testing.T) {
	t.Parallel()

	bin, _ := fakeGit(t, 1)
	g := &publish.Git{Dir: "out", Binary: bin}
	require.Error(t, g.Commit(t.Context(), "out", "msg"))
}
