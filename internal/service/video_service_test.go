package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/internal/models"
)

type videoStoreFake struct {
	videos  map[int64]*models.Video
	removed []int64
}

func (r *videoStoreFake) Create(ctx context.Context, tx *sql.Tx, video *models.Video) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *videoStoreFake) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	return r.videos[id], nil
}

func (r *videoStoreFake) ListByUserID(ctx context.Context, userID int64) ([]*models.Video, error) {
	return nil, nil
}

func (r *videoStoreFake) CheckByUserID(ctx context.Context, videoID, userID int64) (bool, error) {
	v, ok := r.videos[videoID]
	return ok && v.UserID == userID, nil
}

func (r *videoStoreFake) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	delete(r.videos, id)
	return nil
}

type storageFake struct {
	removed   []string
	removeErr error
}

func (s *storageFake) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	return "https://cdn.example/" + key, nil
}

func (s *storageFake) Remove(ctx context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, key)
	return nil
}

func (s *storageFake) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func TestVideoRemoveDeletesStoredObject(t *testing.T) {
	videos := &videoStoreFake{videos: map[int64]*models.Video{
		10: {ID: 10, UserID: 1, FileURL: "https://cdn.example/abc123.mp4"},
	}}
	store := &storageFake{}
	svc := NewVideoService(videos, store)

	err := svc.Remove(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, videos.removed)
	assert.Equal(t, []string{"abc123.mp4"}, store.removed, "the object key must be derived from the file URL")
}

func TestVideoRemoveStorageFailureDoesNotFail(t *testing.T) {
	videos := &videoStoreFake{videos: map[int64]*models.Video{
		10: {ID: 10, UserID: 1, FileURL: "https://cdn.example/abc123.mp4"},
	}}
	store := &storageFake{removeErr: errors.New("r2 unavailable")}
	svc := NewVideoService(videos, store)

	err := svc.Remove(context.Background(), 1, 10)
	require.NoError(t, err, "a storage failure must not resurrect the row")
	assert.Equal(t, []int64{10}, videos.removed)
}

func TestVideoRemoveRefusesForeignVideo(t *testing.T) {
	videos := &videoStoreFake{videos: map[int64]*models.Video{
		10: {ID: 10, UserID: 1, FileURL: "https://cdn.example/abc123.mp4"},
	}}
	store := &storageFake{}
	svc := NewVideoService(videos, store)

	err := svc.Remove(context.Background(), 2, 10)
	require.Error(t, err)
	assert.Empty(t, videos.removed)
	assert.Empty(t, store.removed)
}
