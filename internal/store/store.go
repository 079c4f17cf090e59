package store

import (
	"context"
	"errors"

	"github.com/nhle/mailacct/internal/model"
)

// ErrNotFound is returned when no account matches the lookup.
var ErrNotFound = errors.New("account not found")

// Store defines the persistence interface for the account registry.
type Store interface {
	UpsertAccount(ctx context.Context, rec model.AccountRecord) (model.AccountRecord, error)
	GetAccounts(ctx context.Context) ([]model.AccountRecord, error)
	GetAccountByName(ctx context.Context, name string) (*model.AccountRecord, error)
	DeleteAccount(ctx context.Context, id string) error
}
