package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"shortloop/internal/models"
	"shortloop/internal/repository"
	"shortloop/internal/storage"
)

type VideoService interface {
	Upload(ctx context.Context, userID int64, title, description string, file *multipart.FileHeader) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Video, error)
	Remove(ctx context.Context, userID, videoID int64) error
}

type videoService struct {
	videos  repository.VideoRepository
	storage storage.Storage
}

func NewVideoService(videos repository.VideoRepository, store storage.Storage) VideoService {
	return &videoService{videos: videos, storage: store}
}

// Upload sniffs the real file type, stores the video and records its row.
// Only short-form video containers are accepted.
func (s *videoService) Upload(ctx context.Context, userID int64, title, description string, file *multipart.FileHeader) (int64, error) {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {},
	}

	fileContent, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return 0, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return 0, errors.New("unsupported file type")
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return 0, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	key = fmt.Sprintf("%s.%s", key, fileType.Extension)

	fileURL, err := s.storage.Upload(ctx, key, fileBytes, fileType.MIME.Value)
	if err != nil {
		return 0, fmt.Errorf("error uploading file: %w", err)
	}

	if title == "" {
		title = file.Filename
	}

	video := models.Video{
		UserID:      userID,
		Title:       title,
		Description: description,
		FileURL:     fileURL,
		FileSize:    int64(len(fileBytes)),
	}

	videoID, err := s.videos.Create(ctx, nil, &video)
	if err != nil {
		return 0, fmt.Errorf("error saving video: %w", err)
	}

	return videoID, nil
}

func (s *videoService) List(ctx context.Context, userID int64) ([]*models.Video, error) {
	videos, err := s.videos.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.New("error listing videos")
	}
	return videos, nil
}

func (s *videoService) Remove(ctx context.Context, userID, videoID int64) error {
	var err error

	if videoID == 0 {
		err = errors.New("video id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.videos.CheckByUserID(ctx, videoID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("video doesn't exist")
		slog.Info(err.Error())
		return err
	}

	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}

	if err = s.videos.Remove(ctx, videoID); err != nil {
		return errors.New("error removing video")
	}

	// The stored object goes too; a storage failure leaves an orphan object
	// but must not resurrect the row.
	if video != nil && video.FileURL != "" {
		if err := s.storage.Remove(ctx, path.Base(video.FileURL)); err != nil {
			slog.Error("failed to remove stored video object", "video_id", videoID, "error", err)
		}
	}

	return nil
}
