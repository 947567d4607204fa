package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/approval"
)

type approvalRepository struct {
	db *approvalTable
}

var _ approval.Repository = (*approvalRepository)(nil) // interface compliance check

func NewApprovalRepository(db *DB) approval.Repository {
	return &approvalRepository{db: db.approval}
}

func (repo *approvalRepository) CreateApproval(ctx context.Context, appr approval.Approval) (approval.Approval, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if appr.ID == "" {
		appr.ID = uuid.New().String()
	}
	repo.db.table[appr.ID] = &appr
	return appr, nil
}

func (repo *approvalRepository) QueryApprovals(ctx context.Context, filter *approval.QueryFilter, ordering []core.DBOrdering) ([]approval.Approval, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	approvals := make([]approval.Approval, 0, len(repo.db.table))
	for _, appr := range repo.db.table {
		if filter != nil && filter.Status != "" && appr.Status != filter.Status {
			continue
		}
		approvals = append(approvals, *appr)
	}

	sort.Slice(approvals, func(i, j int) bool { return approvals[i].RequestedAt.After(approvals[j].RequestedAt) })
	return approvals, nil
}

func (repo *approvalRepository) GetApproval(ctx context.Context, id string) (approval.Approval, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if appr, ok := repo.db.table[id]; ok {
		return *appr, nil
	}
	return approval.Approval{}, approval.ErrNotFound
}

func (repo *approvalRepository) UpdateApproval(ctx context.Context, appr approval.Approval) (approval.Approval, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[appr.ID]; !ok {
		return approval.Approval{}, approval.ErrNotFound
	}
	repo.db.table[appr.ID] = &appr
	return appr, nil
}
