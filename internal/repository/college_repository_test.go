package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/models"
)

func TestCollegeCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO college (name) VALUES ($1) RETURNING id")).
		WithArgs("GEC Kannur").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1007))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM college ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1001, "NIT Calicut").
			AddRow(1007, "GEC Kannur"))

	college, err := repo.Create(context.Background(), "GEC Kannur")
	require.NoError(t, err)
	assert.Equal(t, models.College{ID: 1007, Name: "GEC Kannur"}, college)

	colleges, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, colleges, 2)
	assert.Equal(t, "GEC Kannur", colleges[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollegeFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM college WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := repo.FindByID(context.Background(), 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRepository(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, username, password_hash FROM admin WHERE username = $1 LIMIT 1")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "username", "password_hash"}).AddRow(1, "Admin", "admin", "hash"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admin")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO admin (name, username, password_hash) VALUES ($1, $2, $3) RETURNING id")).
		WillReturnError(&pq.Error{Code: pgerrcode.UniqueViolation})

	account, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.Admin{ID: 1, Name: "Admin"}, account.Admin)
	assert.Equal(t, "hash", account.PasswordHash)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	err = repo.Create(context.Background(), &models.AdminAccount{Admin: models.Admin{Name: "Admin"}, Username: "admin", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrAdminExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLog{DeskID: "desk-1", Action: models.AuditActionLogin, Resource: models.AuditResourceDesk}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	assert.False(t, repo.Enabled())

	var dest []models.College
	assert.Error(t, repo.Get(context.Background(), "k", &dest))
	assert.NoError(t, repo.Set(context.Background(), "k", dest, 0))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	assert.NoError(t, repo.Close())
}
