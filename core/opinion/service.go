package opinion

import (
	"context"
	"time"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type (
	Repository interface {
		CreateOpinion(ctx context.Context, op Opinion) (Opinion, error)
		QueryOpinions(ctx context.Context, ordering []core.DBOrdering) ([]Opinion, error)
	}

	Service interface {
		Create(ctx context.Context, no NewOpinion, usr user.User) (Opinion, error)
		// Query lists opinions newest-first.
		Query(ctx context.Context) ([]Opinion, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, no NewOpinion, usr user.User) (Opinion, error) {
	op := Opinion{
		StudentName: usr.FullName(),
		Subject:     no.Subject,
		Text:        no.Text,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateOpinion(ctx, op)
}

func (svc *service) Query(ctx context.Context) ([]Opinion, error) {
	return svc.repo.QueryOpinions(ctx, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}
