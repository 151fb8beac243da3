package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/regdesk-api/internal/models"
)

// AdminRepository provides access to desk operator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername returns the account with the given username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	const query = `SELECT id, name, username, password_hash FROM admin WHERE username = $1 LIMIT 1`
	var account models.AdminAccount
	if err := r.db.GetContext(ctx, &account, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &account, nil
}

// Count returns the number of admin accounts.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return total, nil
}

// Create inserts an account and sets its id.
func (r *AdminRepository) Create(ctx context.Context, account *models.AdminAccount) error {
	const query = `INSERT INTO admin (name, username, password_hash) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, account.Name, account.Username, account.PasswordHash).Scan(&account.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrAdminExists
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
