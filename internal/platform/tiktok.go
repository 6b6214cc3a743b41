package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "shortloop/configs"
	"shortloop/internal/models"
	"shortloop/internal/repository"
	"shortloop/internal/transfer"
	"shortloop/pkg/utils"
)

const (
	tiktokTokenURL   = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokCreatorURL = "https://open.tiktokapis.com/v2/post/publish/creator_info/query/"
	tiktokPublishURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"
)

type TiktokPublisher struct {
	cfg      config.Config
	accounts repository.SocialAccountRepository
}

func NewTiktokPublisher(cfg config.Config, accounts repository.SocialAccountRepository) *TiktokPublisher {
	return &TiktokPublisher{cfg: cfg, accounts: accounts}
}

func (p *TiktokPublisher) Publish(ctx context.Context, fileURL string, md Metadata, acc *models.SocialAccount) (*Result, error) {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	if err := queryCreatorInfo(ctx, decryptedAccessToken); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	videoUploadRequest := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 md.Title + "\n" + md.FullDescription(),
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			DisableDuet:           false,
			DisableComment:        false,
			DisableStitch:         false,
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: fileURL,
		},
	}

	jsonData, err := json.Marshal(videoUploadRequest)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokPublishURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+decryptedAccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result transfer.TikTokUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error posting video on tiktok: %s", result.Error.Message)
	}

	return &Result{ID: result.Data.PublishID}, nil
}

func (p *TiktokPublisher) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("client_key", p.cfg.TiktokClientKey)
	data.Set("client_secret", p.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("TikTok token endpoint returned non-200 status")
		return errors.New("TikTok token endpoint returned non-200 status")
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(tokenResponse.ExpiresIn)),
	}

	return p.accounts.SetToken(ctx, acc.UserID, acc.AccessToken, &socialAccount)
}

// TikTok requires a creator info query before every direct post.
func queryCreatorInfo(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokCreatorURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("creator info query returned status %d", resp.StatusCode)
	}
	return nil
}
