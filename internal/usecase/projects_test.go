package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/mocks"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

func TestProjects_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectStore(ctrl)
	svc := NewProjects(projects)

	alice := domain.User{ID: "u-alice", Email: "alice@example.com"}
	project := store.Project{ID: testRoomID, Name: "demo", Members: []string{alice.ID}}

	t.Run("should return members and an empty tree", func(t *testing.T) {
		req := require.New(t)
		projects.EXPECT().FindProject(gomock.Any(), testRoomID).Return(project, nil)
		projects.EXPECT().Members(gomock.Any(), testRoomID).Return([]domain.User{alice}, nil)

		details, err := svc.Get(context.Background(), testRoomID, alice)
		req.NoError(err)
		req.Equal("demo", details.Name)
		req.Equal([]domain.User{alice}, details.Users)
		req.NotNil(details.FileTree)
	})

	t.Run("should refuse non-members", func(t *testing.T) {
		req := require.New(t)
		projects.EXPECT().FindProject(gomock.Any(), testRoomID).Return(project, nil)
		projects.EXPECT().Members(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Get(context.Background(), testRoomID, domain.User{ID: "u-eve"})
		req.ErrorIs(err, store.ErrForbidden)
		req.Equal(http.StatusForbidden, StatusCode(err))
	})
}
