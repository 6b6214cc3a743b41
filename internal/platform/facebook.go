package platform

import (
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
	"shortloop/pkg/utils"
)

const facebookGraphURL = "https://graph.facebook.com/v18.0"

type FacebookPublisher struct {
	cfg      config.Config
	accounts repository.SocialAccountRepository
}

func NewFacebookPublisher(cfg config.Config, accounts repository.SocialAccountRepository) *FacebookPublisher {
	return &FacebookPublisher{cfg: cfg, accounts: accounts}
}

type facebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// Publish uploads the hosted video to the user's first page by URL. Page
// selection is first-come until page picking lands in account settings.
func (p *FacebookPublisher) Publish(ctx context.Context, fileURL string, md Metadata, acc *models.SocialAccount) (*Result, error) {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	pages, err := p.listPages(ctx, decryptedAccessToken)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("no Facebook pages found for account")
	}
	page := pages[0]

	params := url.Values{}
	params.Set("file_url", fileURL)
	params.Set("title", md.Title)
	params.Set("description", md.FullDescription())
	params.Set("access_token", page.AccessToken)

	reqURL := fmt.Sprintf("%s/%s/videos", facebookGraphURL, page.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if resp.StatusCode != http.StatusOK || result.ID == "" {
		return nil, fmt.Errorf("error posting video on facebook: %s", result.Error.Message)
	}

	return &Result{
		ID:  result.ID,
		URL: fmt.Sprintf("https://www.facebook.com/%s/videos/%s", page.ID, result.ID),
	}, nil
}

func (p *FacebookPublisher) listPages(ctx context.Context, accessToken string) ([]facebookPage, error) {
	reqURL := fmt.Sprintf("%s/me/accounts?access_token=%s", facebookGraphURL, url.QueryEscape(accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook pages lookup returned status %d", resp.StatusCode)
	}

	var result struct {
		Data []facebookPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return result.Data, nil
}

// RefreshToken exchanges the current long-lived token for a fresh one; the
// exchange extends expiry by roughly 60 days.
func (p *FacebookPublisher) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	decryptedAccessToken, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", p.cfg.FacebookAppID)
	params.Set("client_secret", p.cfg.FacebookAppSecret)
	params.Set("fb_exchange_token", decryptedAccessToken)

	reqURL := fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("Facebook token exchange returned non-200 status")
		return errors.New("Facebook token exchange returned non-200 status")
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	if result.ExpiresIn == 0 {
		expiresAt = time.Now().Add(60 * 24 * time.Hour)
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(p.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		TokenExpiresAt: expiresAt,
	}

	return p.accounts.SetToken(ctx, acc.UserID, acc.AccessToken, &socialAccount)
}
