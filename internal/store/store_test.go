package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndFindUser(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "  Alice@Example.com ")
	req.NoError(err)
	req.Equal("alice@example.com", user.Email)
	req.NotEmpty(user.ID)

	byID, err := s.FindUser(ctx, user.ID)
	req.NoError(err)
	req.Equal(user, byID)

	byEmail, err := s.FindUserByEmail(ctx, "ALICE@example.com")
	req.NoError(err)
	req.Equal(user, byEmail)

	_, err = s.CreateUser(ctx, "alice@example.com")
	req.ErrorIs(err, ErrAlreadyExists)

	_, err = s.FindUserByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, ErrNotFound)
}

func TestCreateProject(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "owner@example.com")
	req.NoError(err)

	project, err := s.CreateProject(ctx, " demo ", owner.ID)
	req.NoError(err)
	req.Equal("demo", project.Name)
	req.Equal([]string{owner.ID}, project.Members)

	found, err := s.FindProject(ctx, project.ID)
	req.NoError(err)
	req.Equal(project.ID, found.ID)
	req.Empty(found.FileTree)

	_, err = s.CreateProject(ctx, "orphan", "missing-user")
	req.ErrorIs(err, ErrNotFound)

	_, err = s.FindProject(ctx, "missing")
	req.ErrorIs(err, ErrNotFound)
}

func TestSaveFileTree_LastWriteWins(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "owner@example.com")
	project, _ := s.CreateProject(ctx, "demo", owner.ID)

	req.NoError(s.SaveFileTree(ctx, project.ID, domain.FileTree{"a.js": "1", "b.js": "x"}))
	req.NoError(s.SaveFileTree(ctx, project.ID, domain.FileTree{"a.js": "2"}))

	found, err := s.FindProject(ctx, project.ID)
	req.NoError(err)
	req.Equal(domain.FileTree{"a.js": "2"}, found.FileTree)

	req.ErrorIs(s.SaveFileTree(ctx, "missing", domain.FileTree{}), ErrNotFound)
}

func TestSaveFileTree_ConcurrentWritersNeverFail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "owner@example.com")
	project, _ := s.CreateProject(ctx, "demo", owner.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.SaveFileTree(ctx, project.ID, domain.FileTree{"a.js": fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	found, err := s.FindProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, found.FileTree, 1)
}

func TestAddMember(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, "owner@example.com")
	bob, _ := s.CreateUser(ctx, "bob@example.com")
	eve, _ := s.CreateUser(ctx, "eve@example.com")
	project, _ := s.CreateProject(ctx, "demo", owner.ID)

	req.NoError(s.AddMember(ctx, project.ID, owner.ID, bob.ID))

	// Adding the same user twice leaves the set unchanged
	req.ErrorIs(s.AddMember(ctx, project.ID, owner.ID, bob.ID), ErrAlreadyMember)
	found, _ := s.FindProject(ctx, project.ID)
	req.Len(found.Members, 2)

	// Only collaborators may add members
	req.ErrorIs(s.AddMember(ctx, project.ID, eve.ID, eve.ID), ErrForbidden)

	req.ErrorIs(s.AddMember(ctx, project.ID, owner.ID, "missing-user"), ErrNotFound)
	req.ErrorIs(s.AddMember(ctx, "missing", owner.ID, bob.ID), ErrNotFound)

	members, err := s.Members(ctx, project.ID)
	req.NoError(err)
	req.Equal([]domain.User{owner, bob}, members)
}

func TestListProjects(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	owner, _ := s.CreateUser(ctx, "owner@example.com")
	first, _ := s.CreateProject(ctx, "first", owner.ID)
	second, _ := s.CreateProject(ctx, "second", owner.ID)

	projects, err := s.ListProjects(ctx)
	req.NoError(err)
	req.Len(projects, 2)
	req.Equal(first.ID, projects[0].ID)
	req.Equal(second.ID, projects[1].ID)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(Options{InMemory: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.FindProject(context.Background(), "any")
	require.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.SaveFileTree(ctx, "any", domain.FileTree{}), context.Canceled)
}
