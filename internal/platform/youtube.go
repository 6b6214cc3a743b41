package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	config "shortloop/configs"
	"shortloop/internal/models"
	"shortloop/internal/repository"
	"shortloop/pkg/utils"
)

type YoutubePublisher struct {
	cfg      config.Config
	accounts repository.SocialAccountRepository
}

func NewYoutubePublisher(cfg config.Config, accounts repository.SocialAccountRepository) *YoutubePublisher {
	return &YoutubePublisher{cfg: cfg, accounts: accounts}
}

func (p *YoutubePublisher) Publish(ctx context.Context, fileURL string, md Metadata, acc *models.SocialAccount) (*Result, error) {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken: decryptedAccessToken,
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error creating YouTube service: %w", err)
	}

	tempFile, err := downloadToTempFile(fileURL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       md.Title,
			Description: md.FullDescription(),
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error uploading video to YouTube: %w", err)
	}

	return &Result{
		ID:  response.Id,
		URL: "https://youtu.be/" + response.Id,
	}, nil
}

func (p *YoutubePublisher) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	conf := &oauth2.Config{
		ClientID:     p.cfg.GoogleClientID,
		ClientSecret: p.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Endpoint:     google.Endpoint,
	}

	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		TokenExpiresAt: token.Expiry,
	}

	return p.accounts.SetToken(ctx, acc.UserID, acc.AccessToken, &socialAccount)
}

// downloadToTempFile pulls the stored video down to a local temp file, since
// the YouTube upload API wants a reader it can seek.
func downloadToTempFile(fileURL string) (string, error) {
	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer tempFile.Close()

	response, err := http.Get(fileURL)
	if err != nil {
		return "", fmt.Errorf("error downloading video: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	_, err = io.Copy(tempFile, response.Body)
	if err != nil {
		return "", fmt.Errorf("error saving video to temporary file: %w", err)
	}

	return tempFile.Name(), nil
}
