package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type userRow struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PhoneNumber  string    `db:"phone_number"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	IsActive     null.Bool `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		PhoneNumber:  row.PhoneNumber,
		Role:         row.Role,
		Status:       row.Status,
		IsActive:     row.IsActive.Ptr(),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Email:        usr.Email,
		PhoneNumber:  usr.PhoneNumber,
		Role:         usr.Role,
		Status:       usr.Status,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		placeholders, exclArgs := inArgs(userIDs(excludedUsers), 2)
		query += ` AND id NOT IN (` + placeholders + `)`
		args = append(args, exclArgs...)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return err
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	row := toUserRow(usr)
	query := `
INSERT INTO "user" (id, first_name, last_name, email, phone_number, role, status, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :first_name, :last_name, :email, :phone_number, :role, :status, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	query := `SELECT * FROM "user" WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			n := strconv.Itoa(len(args) + 1)
			query += ` AND (first_name ILIKE '%' || $` + n + ` || '%' OR last_name ILIKE '%' || $` + n + ` || '%' OR email ILIKE '%' || $` + n + ` || '%')`
			args = append(args, filter.Search)
		}
		if filter.Role != "" {
			args = append(args, filter.Role)
			query += ` AND role = $` + strconv.Itoa(len(args))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			query += ` AND status = $` + strconv.Itoa(len(args))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			query += ` AND COALESCE(is_active, TRUE) = $` + strconv.Itoa(len(args))
		}
		if !filter.CreatedFrom.IsZero() {
			args = append(args, filter.CreatedFrom.UTC())
			query += ` AND created_at >= $` + strconv.Itoa(len(args))
		}
		if !filter.CreatedTo.IsZero() {
			args = append(args, filter.CreatedTo.UTC())
			query += ` AND created_at <= $` + strconv.Itoa(len(args))
		}
	}
	query += orderingClause(ordering)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	query := `SELECT * FROM "user" WHERE id = $1`
	arg := filter.ID
	if filter.ID == "" {
		query = `SELECT * FROM "user" WHERE email = $1`
		arg = filter.Email
	}

	var row userRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := toUserRow(usr)
	query := `
UPDATE "user"
SET first_name = :first_name, last_name = :last_name, email = :email, phone_number = :phone_number,
    role = :role, status = :status, is_active = :is_active, password_hash = :password_hash,
    updated_at = :updated_at, last_login = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return user.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	row := toUserRow(usr)
	query := `
INSERT INTO "user" (id, first_name, last_name, email, phone_number, role, status, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :first_name, :last_name, :email, :phone_number, :role, :status, :is_active, :password_hash, :created_at, :updated_at, :last_login)
ON CONFLICT (email) DO UPDATE
SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, phone_number = EXCLUDED.phone_number,
    role = EXCLUDED.role, status = EXCLUDED.status, is_active = EXCLUDED.is_active,
    password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, err
	}
	return repo.GetUser(ctx, user.GetFilter{Email: usr.Email})
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func userIDs(users []user.User) []string {
	ids := make([]string, 0, len(users))
	for _, usr := range users {
		ids = append(ids, usr.ID)
	}
	return ids
}
