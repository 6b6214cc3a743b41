package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "shortloop/configs"
	"shortloop/internal/models"
	"shortloop/internal/repository"
	"shortloop/internal/transfer"
	"shortloop/pkg/utils"
)

const instagramGraphURL = "https://graph.instagram.com/v21.0"

type InstagramPublisher struct {
	cfg      config.Config
	accounts repository.SocialAccountRepository
}

func NewInstagramPublisher(cfg config.Config, accounts repository.SocialAccountRepository) *InstagramPublisher {
	return &InstagramPublisher{cfg: cfg, accounts: accounts}
}

// Publish runs the two-step reel flow: create a media container from the
// hosted video URL, wait for processing, then publish the container.
func (p *InstagramPublisher) Publish(ctx context.Context, fileURL string, md Metadata, acc *models.SocialAccount) (*Result, error) {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	containerID, err := p.createReelContainer(ctx, acc.AccountID, fileURL, md.FullDescription(), decryptedAccessToken)
	if err != nil {
		return nil, err
	}

	if err := p.waitForContainer(ctx, containerID, decryptedAccessToken); err != nil {
		return nil, err
	}

	mediaID, err := p.publishContainer(ctx, acc.AccountID, containerID, decryptedAccessToken)
	if err != nil {
		return nil, err
	}

	return &Result{ID: mediaID}, nil
}

func (p *InstagramPublisher) createReelContainer(ctx context.Context, accountID, fileURL, caption, accessToken string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s/media", instagramGraphURL, accountID)

	payload := map[string]interface{}{
		"media_type":   "REELS",
		"video_url":    fileURL,
		"caption":      caption,
		"access_token": accessToken,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp transfer.InstagramErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("error creating reel container: %s", errResp.Error.Message)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return result.ID, nil
}

// waitForContainer polls the container status until processing finishes.
// Instagram usually needs a handful of seconds for a short reel.
func (p *InstagramPublisher) waitForContainer(ctx context.Context, containerID, accessToken string) error {
	reqURL := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", instagramGraphURL, containerID, accessToken)

	for attempt := 0; attempt < 20; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}

		var result struct {
			StatusCode string `json:"status_code"`
		}
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return err
		}

		switch result.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return fmt.Errorf("reel container %s failed processing", containerID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return fmt.Errorf("reel container %s not ready after polling", containerID)
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, accountID, containerID, accessToken string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s/media_publish?creation_id=%s&access_token=%s",
		instagramGraphURL, accountID, containerID, accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp transfer.InstagramErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("error publishing reel: %s", errResp.Error.Message)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.ID, nil
}

func (p *InstagramPublisher) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		decryptedRefreshToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	// Instagram long-lived tokens refresh themselves; the refreshed token is
	// both the new access and refresh credential.
	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedAccessToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(result.ExpiresIn)),
	}

	return p.accounts.SetToken(ctx, acc.UserID, acc.RefreshToken, &socialAccount)
}
