package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/regdesk-api/internal/models"
)

// CollegeRepository manages the college table.
type CollegeRepository struct {
	db *sqlx.DB
}

// NewCollegeRepository constructs the repository.
func NewCollegeRepository(db *sqlx.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

// Create inserts a college and returns it with its new id.
func (r *CollegeRepository) Create(ctx context.Context, name string) (models.College, error) {
	const query = `INSERT INTO college (name) VALUES ($1) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, name).Scan(&id); err != nil {
		return models.College{}, fmt.Errorf("create college: %w", err)
	}
	return models.College{ID: id, Name: name}, nil
}

// FindByID returns a college by id.
func (r *CollegeRepository) FindByID(ctx context.Context, id int64) (models.College, error) {
	const query = `SELECT id, name FROM college WHERE id = $1`
	var college models.College
	if err := r.db.GetContext(ctx, &college, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.College{}, err
		}
		return models.College{}, fmt.Errorf("find college: %w", err)
	}
	return college, nil
}

// List returns every college ordered by id.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	const query = `SELECT id, name FROM college ORDER BY id`
	colleges := make([]models.College, 0)
	if err := r.db.SelectContext(ctx, &colleges, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}
