package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/opinion"
)

type opinionRow struct {
	ID          string    `db:"id"`
	StudentName string    `db:"student_name"`
	Subject     string    `db:"subject"`
	Text        string    `db:"text"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row opinionRow) toOpinion() opinion.Opinion {
	return opinion.Opinion(row)
}

type opinionRepository struct {
	db *sqlx.DB
}

var _ opinion.Repository = (*opinionRepository)(nil) // interface compliance check

func NewOpinionRepository(db *sqlx.DB) opinion.Repository {
	return &opinionRepository{db: db}
}

func (repo *opinionRepository) CreateOpinion(ctx context.Context, op opinion.Opinion) (opinion.Opinion, error) {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	query := `
INSERT INTO opinion (id, student_name, subject, text, created_at)
VALUES (:id, :student_name, :subject, :text, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, opinionRow(op)); err != nil {
		return opinion.Opinion{}, err
	}
	return op, nil
}

func (repo *opinionRepository) QueryOpinions(ctx context.Context, ordering []core.DBOrdering) ([]opinion.Opinion, error) {
	var rows []opinionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM opinion`+orderingClause(ordering)); err != nil {
		return nil, err
	}
	opinions := make([]opinion.Opinion, 0, len(rows))
	for _, row := range rows {
		opinions = append(opinions, row.toOpinion())
	}
	return opinions, nil
}
