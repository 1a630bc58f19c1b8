package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmuslimabdulj/goat-collab/internal/auth"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &app{store: s}
}

func execute(a *app, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUserAndProjectLifecycle(t *testing.T) {
	req := require.New(t)
	a := newTestApp(t)
	ctx := context.Background()

	out, err := execute(a, "user", "create", "alice@example.com")
	req.NoError(err)
	req.Contains(out, "Created user alice@example.com")

	_, err = execute(a, "user", "create", "bob@example.com")
	req.NoError(err)

	_, err = execute(a, "user", "create", "ALICE@example.com")
	req.ErrorIs(err, store.ErrAlreadyExists)

	out, err = execute(a, "project", "create", "demo", "--owner", "alice@example.com")
	req.NoError(err)
	req.Contains(out, "Created project demo")

	projects, err := a.store.ListProjects(ctx)
	req.NoError(err)
	req.Len(projects, 1)
	projectID := projects[0].ID

	out, err = execute(a, "project", "add-member", projectID, "bob@example.com")
	req.NoError(err)
	req.Contains(out, "Added bob@example.com")

	_, err = execute(a, "project", "add-member", projectID, "bob@example.com", "--as", "alice@example.com")
	req.ErrorIs(err, store.ErrAlreadyMember)

	out, err = execute(a, "project", "members", projectID)
	req.NoError(err)
	req.Contains(out, "alice@example.com")
	req.Contains(out, "bob@example.com")

	out, err = execute(a, "project", "list")
	req.NoError(err)
	req.Contains(out, projectID)
	req.Contains(out, "demo")
}

func TestProjectCreate_UnknownOwner(t *testing.T) {
	a := newTestApp(t)

	_, err := execute(a, "project", "create", "demo", "--owner", "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = execute(a, "project", "create", "demo")
	require.Error(t, err)
}

func TestTokenIssue(t *testing.T) {
	req := require.New(t)
	a := newTestApp(t)

	_, err := execute(a, "user", "create", "alice@example.com")
	req.NoError(err)

	out, err := execute(a, "token", "issue", "alice@example.com", "--secret", "s3cret", "--issuer", "test")
	req.NoError(err)

	user, err := auth.NewVerifier("s3cret", "test").Verify(strings.TrimSpace(out))
	req.NoError(err)
	req.Equal("alice@example.com", user.Email)

	_, err = execute(a, "token", "issue", "ghost@example.com", "--secret", "s3cret")
	req.ErrorIs(err, store.ErrNotFound)
}
