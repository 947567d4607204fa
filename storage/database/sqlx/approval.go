package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/approval"
)

type approvalRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Email       string    `db:"email"`
	PhoneNumber string    `db:"phone_number"`
	Status      string    `db:"status"`
	ReviewedBy  string    `db:"reviewed_by"`
	ReviewedAt  null.Time `db:"reviewed_at"`
	Notes       string    `db:"notes"`
	RequestedAt time.Time `db:"requested_at"`
}

func (row approvalRow) toApproval() approval.Approval {
	return approval.Approval{
		ID:          row.ID,
		UserID:      row.UserID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		PhoneNumber: row.PhoneNumber,
		Status:      row.Status,
		ReviewedBy:  row.ReviewedBy,
		ReviewedAt:  row.ReviewedAt.Time,
		Notes:       row.Notes,
		RequestedAt: row.RequestedAt,
	}
}

func toApprovalRow(appr approval.Approval) approvalRow {
	return approvalRow{
		ID:          appr.ID,
		UserID:      appr.UserID,
		FirstName:   appr.FirstName,
		LastName:    appr.LastName,
		Email:       appr.Email,
		PhoneNumber: appr.PhoneNumber,
		Status:      appr.Status,
		ReviewedBy:  appr.ReviewedBy,
		ReviewedAt:  null.NewTime(appr.ReviewedAt, !appr.ReviewedAt.IsZero()),
		Notes:       appr.Notes,
		RequestedAt: appr.RequestedAt,
	}
}

type approvalRepository struct {
	db *sqlx.DB
}

var _ approval.Repository = (*approvalRepository)(nil) // interface compliance check

func NewApprovalRepository(db *sqlx.DB) approval.Repository {
	return &approvalRepository{db: db}
}

func (repo *approvalRepository) CreateApproval(ctx context.Context, appr approval.Approval) (approval.Approval, error) {
	if appr.ID == "" {
		appr.ID = uuid.New().String()
	}
	query := `
INSERT INTO approval (id, user_id, first_name, last_name, email, phone_number, status, reviewed_by, reviewed_at, notes, requested_at)
VALUES (:id, :user_id, :first_name, :last_name, :email, :phone_number, :status, :reviewed_by, :reviewed_at, :notes, :requested_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toApprovalRow(appr)); err != nil {
		return approval.Approval{}, err
	}
	return appr, nil
}

func (repo *approvalRepository) QueryApprovals(ctx context.Context, filter *approval.QueryFilter, ordering []core.DBOrdering) ([]approval.Approval, error) {
	query := `SELECT * FROM approval WHERE 1=1`
	var args []interface{}

	if filter != nil && filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += orderingClause(ordering)

	var rows []approvalRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	approvals := make([]approval.Approval, 0, len(rows))
	for _, row := range rows {
		approvals = append(approvals, row.toApproval())
	}
	return approvals, nil
}

func (repo *approvalRepository) GetApproval(ctx context.Context, id string) (approval.Approval, error) {
	var row approvalRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM approval WHERE id = $1`, id); err != nil {
		return approval.Approval{}, trapNoRowsErr(err, approval.ErrNotFound)
	}
	return row.toApproval(), nil
}

func (repo *approvalRepository) UpdateApproval(ctx context.Context, appr approval.Approval) (approval.Approval, error) {
	query := `
UPDATE approval
SET status = :status, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at, notes = :notes
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, toApprovalRow(appr))
	if err != nil {
		return approval.Approval{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return approval.Approval{}, approval.ErrNotFound
	}
	return appr, nil
}
