package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/opinion"
)

type opinionRepository struct {
	db *opinionTable
}

var _ opinion.Repository = (*opinionRepository)(nil) // interface compliance check

func NewOpinionRepository(db *DB) opinion.Repository {
	return &opinionRepository{db: db.opinion}
}

func (repo *opinionRepository) CreateOpinion(ctx context.Context, op opinion.Opinion) (opinion.Opinion, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	repo.db.table[op.ID] = &op
	return op, nil
}

func (repo *opinionRepository) QueryOpinions(ctx context.Context, ordering []core.DBOrdering) ([]opinion.Opinion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	opinions := make([]opinion.Opinion, 0, len(repo.db.table))
	for _, op := range repo.db.table {
		opinions = append(opinions, *op)
	}
	sort.Slice(opinions, func(i, j int) bool { return opinions[i].CreatedAt.After(opinions[j].CreatedAt) })
	return opinions, nil
}
