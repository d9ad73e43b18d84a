package unitofwork

import (
	"context"

	"drive-copilot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserCredentialRepository() contract.UserCredentialRepository
}
