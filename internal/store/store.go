// Package store persists users and projects (their collaborator set and
// file tree) in an embedded Badger database.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

const (
	projectPrefix   = "project:"
	userPrefix      = "user:"
	userEmailPrefix = "user-email:"
)

// Store is the Badger-backed project store
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time

	// writeMu serializes project read-modify-writes so that concurrent
	// updates commit one after the other instead of failing with ErrConflict.
	writeMu sync.Mutex
}

// Options configures Open
type Options struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
}

// Open opens (or creates) the database
func Open(opts Options, log *slog.Logger) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{log: log.With("component", "badger")})
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Close flushes and closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser registers a user identity for email
func (s *Store) CreateUser(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	email = normalizeEmail(email)
	rec := userRecord{ID: uuid.New().String(), Email: email, CreatedAt: s.now().UTC()}
	data, err := encode(rec)
	if err != nil {
		return domain.User{}, fmt.Errorf("store: encode user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailPrefix + email)
		if _, err := txn.Get(emailKey); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set([]byte(userPrefix+rec.ID), data); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(rec.ID))
	})
	if err != nil {
		return domain.User{}, s.wrap("create user", err)
	}
	return rec.toDomain(), nil
}

// FindUser returns the user with id
func (s *Store) FindUser(ctx context.Context, id string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, userPrefix+id, &rec)
	})
	if err != nil {
		return domain.User{}, s.wrap("find user", err)
	}
	return rec.toDomain(), nil
}

// FindUserByEmail returns the user registered with email (case-insensitive)
func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailPrefix + normalizeEmail(email)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getRecord(txn, userPrefix+string(id), &rec)
	})
	if err != nil {
		return domain.User{}, s.wrap("find user by email", err)
	}
	return rec.toDomain(), nil
}

// CreateProject creates an empty project owned by ownerID
func (s *Store) CreateProject(ctx context.Context, name, ownerID string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	now := s.now().UTC()
	project := Project{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Members:   []string{ownerID},
		FileTree:  domain.FileTree{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(userPrefix + ownerID)); err != nil {
			return err
		}
		return putRecord(txn, projectPrefix+project.ID, project)
	})
	if err != nil {
		return Project{}, s.wrap("create project", err)
	}
	return project, nil
}

// FindProject returns the project with id
func (s *Store) FindProject(ctx context.Context, id string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	var project Project
	err := s.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, projectPrefix+id, &project)
	})
	if err != nil {
		return Project{}, s.wrap("find project", err)
	}
	return project, nil
}

// ListProjects returns every project sorted by creation time
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(projectPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var project Project
			err := it.Item().Value(func(val []byte) error {
				return decode(val, &project)
			})
			if err != nil {
				return err
			}
			projects = append(projects, project)
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("list projects", err)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

// Members resolves the collaborator set of a project to public identities.
// Ids that no longer resolve to a user are skipped.
func (s *Store) Members(ctx context.Context, projectID string) ([]domain.User, error) {
	project, err := s.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range project.Members {
			var rec userRecord
			err := getRecord(txn, userPrefix+id, &rec)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users = append(users, rec.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("members", err)
	}
	return users, nil
}

// SaveFileTree replaces the project's file tree with tree.
// There is no merge: the write that commits last wins.
func (s *Store) SaveFileTree(ctx context.Context, projectID string, tree domain.FileTree) error {
	tree = tree.Clone()
	return s.updateProject(ctx, "save file tree", projectID, func(p *Project) error {
		p.FileTree = tree
		return nil
	})
}

// AddMember adds userID to the project's collaborator set. Only an existing
// collaborator (requesterID) may add members; a user cannot be added twice.
func (s *Store) AddMember(ctx context.Context, projectID, requesterID, userID string) error {
	return s.updateProject(ctx, "add member", projectID, func(p *Project) error {
		if !lo.Contains(p.Members, requesterID) {
			return ErrForbidden
		}
		if lo.Contains(p.Members, userID) {
			return ErrAlreadyMember
		}
		p.Members = append(p.Members, userID)
		return nil
	}, userPrefix+userID)
}

// updateProject runs a read-modify-write on one project. requiredKeys must exist.
func (s *Store) updateProject(ctx context.Context, op, projectID string, mutate func(*Project) error, requiredKeys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range requiredKeys {
			if _, err := txn.Get([]byte(key)); err != nil {
				return err
			}
		}
		var project Project
		if err := getRecord(txn, projectPrefix+projectID, &project); err != nil {
			return err
		}
		if err := mutate(&project); err != nil {
			return err
		}
		project.UpdatedAt = s.now().UTC()
		return putRecord(txn, projectPrefix+projectID, project)
	})
	if err != nil {
		s.log.Debug("Project write failed", "op", op, "project_id", projectID, "error", err)
		return s.wrap(op, err)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("store: %s: %w", op, ErrNotFound)
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("store: %s: %w", op, ErrClosed)
	default:
		return fmt.Errorf("store: %s: %w", op, err)
	}
}

func getRecord(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return decode(val, v)
	})
}

func putRecord(txn *badger.Txn, key string, v any) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
