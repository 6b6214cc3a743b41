package service

import (
	"context"
	"errors"
	"log/slog"

	"shortloop/internal/models"
	"shortloop/internal/repository"
)

// AccountService exposes the connected social accounts a user can publish
// through: listing for the composer UI and disconnecting.
type AccountService interface {
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Remove(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	accounts repository.SocialAccountRepository
}

func NewAccountService(accounts repository.SocialAccountRepository) AccountService {
	return &accountService{accounts: accounts}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.New("error listing social accounts")
	}

	// Tokens never leave the service layer.
	for _, acc := range accounts {
		acc.AccessToken = ""
		acc.RefreshToken = ""
	}
	return accounts, nil
}

func (s *accountService) Remove(ctx context.Context, userID, accountID int64) error {
	var err error

	if accountID == 0 {
		err = errors.New("account id is not valid")
		slog.Info(err.Error())
		return err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil || account.UserID != userID {
		err = errors.New("account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err = s.accounts.Remove(ctx, accountID); err != nil {
		return errors.New("error removing social account")
	}

	return nil
}
