package publish

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Archiver records published artifacts in a version-controlled archive.
//
//go:generate mockgen -package=publish_test -destination=mock_archiver_test.go -source=archive.go Archiver
type Archiver interface {
	// Commit records every change under dir with message.
	Commit(ctx context.Context, dir, message string) error
	// Push sends recorded commits to the remote.
	Push(ctx context.Context) error
}

// Git drives the git binary. Commits run in the directory they are asked
// for; pushes run in Dir.
type Git struct {
	Dir    string
	Remote string
	Branch string
	// Binary defaults to "git".
	Binary string
}

func (g *Git) Commit(ctx context.Context, dir, message string) error {
	if _, err := g.run(ctx, dir, "add", "--all", "."); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "commit", "-m", message)
	return err
}

func (g *Git) Push(ctx context.Context) error {
	remote, branch := g.Remote, g.Branch
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "master"
	}
	_, err := g.run(ctx, g.Dir, "push", remote, branch)
	return err
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, append([]string{"-C", dir}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
