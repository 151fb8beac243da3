package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var participantColumns = []string{
	"id", "name", "email", "phone", "gender", "category",
	"college_id", "college_name",
	"verified_by_id", "verified_by_name",
	"hospitality_admin_id", "hospitality_admin_name", "hostel", "room",
}

var sampleInfo = models.ParticipantInfo{
	Name:     "Asha",
	Gender:   models.GenderFemale,
	Email:    "asha@example.com",
	Phone:    "9999999999",
	Category: models.CategoryRagam,
}

func TestParticipantFindByIDNotVerified(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	rows := sqlmock.NewRows(participantColumns).
		AddRow(1001, "Asha", "asha@example.com", "9999999999", 1, 0, 1002, "GEC Kannur", nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM participant p") + ".*" + regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(1001)).
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, sampleInfo, p.Info)
	assert.Equal(t, models.College{ID: 1002, Name: "GEC Kannur"}, p.College)
	token, ok := p.NotVerified()
	require.True(t, ok)
	assert.Equal(t, int64(1001), token.ID())
	assert.Nil(t, p.Hospitality)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantFindByIDVerifiedWithHospitality(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	rows := sqlmock.NewRows(participantColumns).
		AddRow(1000, "Ravi", "ravi@example.com", "88", 0, 1, 1001, "NIT Calicut", 1, "Admin", 2, "Night Desk", "Hostel A", "101")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(1000)).
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), 1000)
	require.NoError(t, err)
	by, ok := p.VerifiedBy()
	require.True(t, ok)
	assert.Equal(t, models.Admin{ID: 1, Name: "Admin"}, by)
	require.NotNil(t, p.Hospitality)
	assert.Equal(t, models.Hospitality{Admin: models.Admin{ID: 2, Name: "Night Desk"}, Hostel: "Hostel A", Room: "101"}, *p.Hospitality)
	assert.Equal(t, models.CategoryKalotsavam, p.Info.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestParticipantCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO participant (college_id, name, email, phone, gender, category) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id")).
		WithArgs(int64(1002), "Asha", "asha@example.com", "9999999999", int16(1), int16(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1001))

	id, err := repo.Create(context.Background(), sampleInfo, 1002)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantCreateUnknownCollege(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectQuery("INSERT INTO participant").
		WillReturnError(&pq.Error{Code: pgerrcode.ForeignKeyViolation, Constraint: participantCollegeFK})

	_, err := repo.Create(context.Background(), sampleInfo, 9)
	assert.ErrorIs(t, err, ErrCollegeNotFound)
}

func TestParticipantCreateVerifiedCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO participant").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1001))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO offline_reg (participant_id, admin_id) VALUES ($1, $2)")).
		WithArgs(int64(1001), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.CreateVerified(context.Background(), sampleInfo, 1002, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantCreateVerifiedRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO participant").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1001))
	mock.ExpectExec("INSERT INTO offline_reg").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.CreateVerified(context.Background(), sampleInfo, 1002, 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE participant SET college_id = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 77, sampleInfo, 1002)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantVerifyClassifiesConstraints(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec("INSERT INTO offline_reg").WithArgs(int64(1001), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO offline_reg").
		WillReturnError(&pq.Error{Code: pgerrcode.UniqueViolation, Constraint: "offline_reg_pkey"})
	mock.ExpectExec("INSERT INTO offline_reg").
		WillReturnError(&pq.Error{Code: pgerrcode.ForeignKeyViolation, Constraint: offlineRegParticipantFK})

	require.NoError(t, repo.Verify(context.Background(), 1001, 1))
	assert.ErrorIs(t, repo.Verify(context.Background(), 1001, 1), ErrAlreadyVerified)
	assert.ErrorIs(t, repo.Verify(context.Background(), 4242, 1), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantUpsertHospitality(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParticipantRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hospitality_reg (participant_id, admin_id, hostel, room) VALUES ($1, $2, $3, $4)") + ".*ON CONFLICT").
		WithArgs(int64(1001), int64(1), "Hostel A", "101").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO hospitality_reg").
		WillReturnError(&pq.Error{Code: pgerrcode.ForeignKeyViolation, Constraint: hospitalityParticipantFK})

	require.NoError(t, repo.UpsertHospitality(context.Background(), 1001, 1, "Hostel A", "101"))
	assert.ErrorIs(t, repo.UpsertHospitality(context.Background(), 9, 1, "Hostel A", "101"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
