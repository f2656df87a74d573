package users_repo

import (
	"context"

	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

type UserRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, user *domain.User) error
	GetByIDTx(ctx context.Context, querier domain.Querier, id int64) (*domain.User, error)
	GetByEmailTx(ctx context.Context, querier domain.Querier, email string) (*domain.User, error)
	ListTx(ctx context.Context, querier domain.Querier) ([]*domain.User, error)
	UpdateTx(ctx context.Context, querier domain.Querier, user *domain.User) error
	DeleteTx(ctx context.Context, querier domain.Querier, id int64) error
}
