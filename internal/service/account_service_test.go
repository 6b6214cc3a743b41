package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/internal/models"
)

type accountStoreFake struct {
	accounts map[int64]*models.SocialAccount
	removed  []int64
}

func (r *accountStoreFake) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return r.accounts[id], nil
}

func (r *accountStoreFake) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return nil, nil
}

func (r *accountStoreFake) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var out []*models.SocialAccount
	for _, acc := range r.accounts {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *accountStoreFake) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *accountStoreFake) SetToken(ctx context.Context, userID int64, oldAccessToken string, sa *models.SocialAccount) error {
	return nil
}

func (r *accountStoreFake) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	delete(r.accounts, id)
	return nil
}

func TestAccountListStripsTokens(t *testing.T) {
	repo := &accountStoreFake{accounts: map[int64]*models.SocialAccount{
		5: {ID: 5, UserID: 1, Platform: "youtube", AccessToken: "sealed", RefreshToken: "sealed"},
	}}
	svc := NewAccountService(repo)

	accounts, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	assert.Empty(t, accounts[0].AccessToken)
	assert.Empty(t, accounts[0].RefreshToken)
	assert.Equal(t, "youtube", accounts[0].Platform)
}

func TestAccountRemove(t *testing.T) {
	repo := &accountStoreFake{accounts: map[int64]*models.SocialAccount{
		5: {ID: 5, UserID: 1, Platform: "youtube"},
	}}
	svc := NewAccountService(repo)

	require.NoError(t, svc.Remove(context.Background(), 1, 5))
	assert.Equal(t, []int64{5}, repo.removed)
}

func TestAccountRemoveRefusesForeignAccount(t *testing.T) {
	repo := &accountStoreFake{accounts: map[int64]*models.SocialAccount{
		5: {ID: 5, UserID: 1, Platform: "youtube"},
	}}
	svc := NewAccountService(repo)

	err := svc.Remove(context.Background(), 2, 5)
	require.Error(t, err)
	assert.Empty(t, repo.removed)
}
