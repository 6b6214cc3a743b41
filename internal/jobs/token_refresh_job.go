package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shortloop/internal/models"
	"shortloop/internal/platform"
	"shortloop/internal/repository"
)

// TokenRefreshJob renews social account tokens shortly before they expire so
// a publish task never fires against a dead credential.
type TokenRefreshJob struct {
	accounts   repository.SocialAccountRepository
	publishers platform.Registry
}

func NewTokenRefreshJob(accounts repository.SocialAccountRepository, publishers platform.Registry) *TokenRefreshJob {
	return &TokenRefreshJob{
		accounts:   accounts,
		publishers: publishers,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.accounts.ListByTimeInterval(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		publisher, err := c.publishers.Resolve(acc.Platform)
		if err != nil {
			slog.Info("no publisher for platform", "platform", acc.Platform)
			continue
		}

		refresher, ok := publisher.(platform.TokenRefresher)
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := refresher.RefreshToken(ctx, acc); err != nil {
				slog.Info("unable to refresh token",
					"platform", acc.Platform,
					"account_id", acc.ID,
					"error", err)
			}
		}(acc)
	}

	wg.Wait()
}
