package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/bundle"
)

type packageRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Hours     float64   `db:"hours"`
	Price     float64   `db:"price"`
	Category  string    `db:"category"`
	IsActive  null.Bool `db:"is_active"`
	ImageURL  string    `db:"image_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row packageRow) toPackage() bundle.Package {
	return bundle.Package{
		ID:        row.ID,
		Title:     row.Title,
		Hours:     row.Hours,
		Price:     row.Price,
		Category:  row.Category,
		Active:    row.IsActive.Ptr(),
		ImageURL:  row.ImageURL,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toPackageRow(pkg bundle.Package) packageRow {
	return packageRow{
		ID:        pkg.ID,
		Title:     pkg.Title,
		Hours:     pkg.Hours,
		Price:     pkg.Price,
		Category:  pkg.Category,
		IsActive:  null.BoolFromPtr(pkg.Active),
		ImageURL:  pkg.ImageURL,
		CreatedAt: pkg.CreatedAt,
		UpdatedAt: pkg.UpdatedAt,
	}
}

type purchaseRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	StudentEmail string    `db:"student_email"`
	Title        string    `db:"title"`
	Hours        float64   `db:"hours"`
	HoursUsed    float64   `db:"hours_used"`
	Price        float64   `db:"price"`
	Category     string    `db:"category"`
	IsActive     null.Bool `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row purchaseRow) toPurchase() bundle.Purchase {
	return bundle.Purchase{
		ID:           row.ID,
		StudentID:    row.StudentID,
		StudentEmail: row.StudentEmail,
		Title:        row.Title,
		Hours:        row.Hours,
		HoursUsed:    row.HoursUsed,
		Price:        row.Price,
		Category:     row.Category,
		Active:       row.IsActive.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toPurchaseRow(pur bundle.Purchase) purchaseRow {
	return purchaseRow{
		ID:           pur.ID,
		StudentID:    pur.StudentID,
		StudentEmail: pur.StudentEmail,
		Title:        pur.Title,
		Hours:        pur.Hours,
		HoursUsed:    pur.HoursUsed,
		Price:        pur.Price,
		Category:     pur.Category,
		IsActive:     null.BoolFromPtr(pur.Active),
		CreatedAt:    pur.CreatedAt,
		UpdatedAt:    pur.UpdatedAt,
	}
}

type bundleRepository struct {
	db *sqlx.DB
}

var _ bundle.Repository = (*bundleRepository)(nil) // interface compliance check

func NewBundleRepository(db *sqlx.DB) bundle.Repository {
	return &bundleRepository{db: db}
}

func (repo *bundleRepository) CreatePackage(ctx context.Context, pkg bundle.Package) (bundle.Package, error) {
	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}
	query := `
INSERT INTO package (id, title, hours, price, category, is_active, image_url, created_at, updated_at)
VALUES (:id, :title, :hours, :price, :category, :is_active, :image_url, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toPackageRow(pkg)); err != nil {
		return bundle.Package{}, err
	}
	return pkg, nil
}

func (repo *bundleRepository) QueryPackages(ctx context.Context, ordering []core.DBOrdering) ([]bundle.Package, error) {
	var rows []packageRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM package`+orderingClause(ordering)); err != nil {
		return nil, err
	}
	pkgs := make([]bundle.Package, 0, len(rows))
	for _, row := range rows {
		pkgs = append(pkgs, row.toPackage())
	}
	return pkgs, nil
}

func (repo *bundleRepository) GetPackage(ctx context.Context, id string) (bundle.Package, error) {
	var row packageRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM package WHERE id = $1`, id); err != nil {
		return bundle.Package{}, trapNoRowsErr(err, bundle.ErrPackageNotFound)
	}
	return row.toPackage(), nil
}

func (repo *bundleRepository) UpdatePackage(ctx context.Context, pkg bundle.Package) (bundle.Package, error) {
	query := `
UPDATE package
SET title = :title, hours = :hours, price = :price, category = :category, is_active = :is_active,
    image_url = :image_url, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, toPackageRow(pkg))
	if err != nil {
		return bundle.Package{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return bundle.Package{}, bundle.ErrPackageNotFound
	}
	return pkg, nil
}

func (repo *bundleRepository) DeletePackagesByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM package WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *bundleRepository) CreatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	if pur.ID == "" {
		pur.ID = uuid.New().String()
	}
	query := `
INSERT INTO purchase (id, student_id, student_email, title, hours, hours_used, price, category, is_active, created_at, updated_at)
VALUES (:id, :student_id, :student_email, :title, :hours, :hours_used, :price, :category, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toPurchaseRow(pur)); err != nil {
		return bundle.Purchase{}, err
	}
	return pur, nil
}

func (repo *bundleRepository) QueryPurchases(ctx context.Context, filter *bundle.PurchaseFilter, ordering []core.DBOrdering) ([]bundle.Purchase, error) {
	query := `SELECT * FROM purchase WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.StudentID != "" {
			args = append(args, filter.StudentID)
			query += ` AND student_id = $` + strconv.Itoa(len(args))
		}
		if filter.StudentEmail != "" {
			args = append(args, filter.StudentEmail)
			query += ` AND student_email = $` + strconv.Itoa(len(args))
		}
	}
	query += orderingClause(ordering)

	var rows []purchaseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	purchases := make([]bundle.Purchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, row.toPurchase())
	}
	return purchases, nil
}

func (repo *bundleRepository) GetPurchase(ctx context.Context, id string) (bundle.Purchase, error) {
	var row purchaseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM purchase WHERE id = $1`, id); err != nil {
		return bundle.Purchase{}, trapNoRowsErr(err, bundle.ErrPurchaseNotFound)
	}
	return row.toPurchase(), nil
}

func (repo *bundleRepository) UpdatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	query := `
UPDATE purchase
SET student_id = :student_id, student_email = :student_email, title = :title, hours = :hours,
    hours_used = :hours_used, price = :price, category = :category, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, toPurchaseRow(pur))
	if err != nil {
		return bundle.Purchase{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return bundle.Purchase{}, bundle.ErrPurchaseNotFound
	}
	return pur, nil
}

func (repo *bundleRepository) UpdateOrCreatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	if pur.ID == "" {
		pur.ID = uuid.New().String()
	}
	query := `
INSERT INTO purchase (id, student_id, student_email, title, hours, hours_used, price, category, is_active, created_at, updated_at)
VALUES (:id, :student_id, :student_email, :title, :hours, :hours_used, :price, :category, :is_active, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE
SET student_id = EXCLUDED.student_id, student_email = EXCLUDED.student_email, title = EXCLUDED.title,
    hours = EXCLUDED.hours, hours_used = EXCLUDED.hours_used, price = EXCLUDED.price,
    category = EXCLUDED.category, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.NamedExecContext(ctx, query, toPurchaseRow(pur)); err != nil {
		return bundle.Purchase{}, err
	}
	return pur, nil
}

func (repo *bundleRepository) DeletePurchasesByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM purchase WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
