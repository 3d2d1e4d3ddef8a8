package services

import (
	"context"
	"mime/multipart"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fanpulse/internal/models"
)

// ===============================
// FAKES
// ===============================

// archiveRecorder counts ArchiveOlderThan calls and records the last cutoff.
type archiveRecorder struct {
	calls  atomic.Int64
	cutoff atomic.Value
}

func (a *archiveRecorder) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	a.cutoff.Store(cutoff)
	a.calls.Add(1)
	return 0, nil
}

func (a *archiveRecorder) CreateArticle(ctx context.Context, req *CreateArticleRequest) (*models.Article, error) {
	return nil, nil
}

func (a *archiveRecorder) GetArticle(ctx context.Context, id int64, userID *int64) (*models.Article, error) {
	return nil, nil
}

func (a *archiveRecorder) ListArticles(ctx context.Context, category string, params models.PaginationParams, userID *int64) (*models.PaginatedResponse[*models.Article], error) {
	return nil, nil
}

func (a *archiveRecorder) ToggleReaction(ctx context.Context, articleID, userID int64) (bool, error) {
	return false, nil
}

func (a *archiveRecorder) AddComment(ctx context.Context, req *AddCommentRequest) (*models.Comment, error) {
	return nil, nil
}

func (a *archiveRecorder) ListComments(ctx context.Context, articleID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	return nil, nil
}

func (a *archiveRecorder) UploadCoverImage(ctx context.Context, articleID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	return "", nil
}

// ===============================
// TESTS
// ===============================

func TestStartArchiver_RunsPassesUntilCancelled(t *testing.T) {
	recorder := &archiveRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		StartArchiver(ctx, recorder, 24*time.Hour, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return recorder.calls.Load() >= 1
	}, time.Second, time.Millisecond, "expected at least one archive pass")

	cutoff, ok := recorder.cutoff.Load().(time.Time)
	assert.True(t, ok)
	assert.True(t, cutoff.Before(time.Now()), "cutoff should trail the current time by the retention window")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("archiver did not stop after context cancellation")
	}
}
