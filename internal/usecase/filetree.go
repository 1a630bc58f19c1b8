package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// FileTreeSync stores a participant's file tree and shares it with the room
type FileTreeSync struct {
	projects     ProjectStore
	broadcaster  Broadcaster
	storeTimeout time.Duration
	maxBytes     int
	log          *slog.Logger
}

// NewFileTreeSync creates the file tree use case. Trees bigger than maxBytes are rejected.
func NewFileTreeSync(projects ProjectStore, broadcaster Broadcaster, storeTimeout time.Duration, maxBytes int, log *slog.Logger) *FileTreeSync {
	if storeTimeout <= 0 {
		storeTimeout = domain.StoreTimeout
	}
	return &FileTreeSync{
		projects:     projects,
		broadcaster:  broadcaster,
		storeTimeout: storeTimeout,
		maxBytes:     maxBytes,
		log:          log,
	}
}

// Update replaces the project's file tree and sends file-updated to every
// other participant. The broadcast happens even when the write fails; the
// returned error is for the originator only.
func (f *FileTreeSync) Update(ctx context.Context, p domain.Participant, tree domain.FileTree) error {
	if tree == nil {
		return eventError("File tree is required.", fmt.Errorf("%w: nil file tree", ErrInvalidPayload))
	}
	if err := tree.Validate(); err != nil {
		return eventError("File tree contains an invalid file name.", fmt.Errorf("%w: %w", ErrInvalidPayload, err))
	}
	if f.maxBytes > 0 && tree.Size() > f.maxBytes {
		return eventError("File tree is too large.", fmt.Errorf("%w: file tree is %d bytes, limit %d", ErrInvalidPayload, tree.Size(), f.maxBytes))
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.storeTimeout)
	saveErr := f.projects.SaveFileTree(storeCtx, p.RoomID, tree)
	cancel()

	if saveErr != nil {
		f.log.Error("Persist file tree",
			"project_id", p.RoomID,
			"user_id", p.User.ID,
			"files", len(tree),
			"error", saveErr,
		)
	}

	env, err := domain.NewEnvelope(domain.EventFileUpdated, domain.FileTreePayload{FileTree: tree})
	if err != nil {
		return err
	}
	f.broadcaster.Broadcast(p.RoomID, env, p.ConnID)

	if saveErr != nil {
		return eventError("Failed to save the file tree. Collaborators received your changes but they were not stored.", saveErr)
	}
	return nil
}
