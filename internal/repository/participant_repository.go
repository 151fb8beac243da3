package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/regdesk-api/internal/models"
)

const (
	participantCollegeFK     = "participant_college_id_fkey"
	offlineRegParticipantFK  = "offline_reg_participant_id_fkey"
	hospitalityParticipantFK = "hospitality_reg_participant_id_fkey"
)

const participantSelect = `SELECT p.id, p.name, p.email, p.phone, p.gender, p.category,
c.id AS college_id, c.name AS college_name,
o.admin_id AS verified_by_id, va.name AS verified_by_name,
h.admin_id AS hospitality_admin_id, ha.name AS hospitality_admin_name, h.hostel, h.room
FROM participant p
JOIN college c ON c.id = p.college_id
LEFT JOIN offline_reg o ON o.participant_id = p.id
LEFT JOIN admin va ON va.id = o.admin_id
LEFT JOIN hospitality_reg h ON h.participant_id = p.id
LEFT JOIN admin ha ON ha.id = h.admin_id`

type participantRow struct {
	ID                   int64          `db:"id"`
	Name                 string         `db:"name"`
	Email                string         `db:"email"`
	Phone                string         `db:"phone"`
	Gender               int16          `db:"gender"`
	Category             int16          `db:"category"`
	CollegeID            int64          `db:"college_id"`
	CollegeName          string         `db:"college_name"`
	VerifiedByID         sql.NullInt64  `db:"verified_by_id"`
	VerifiedByName       sql.NullString `db:"verified_by_name"`
	HospitalityAdminID   sql.NullInt64  `db:"hospitality_admin_id"`
	HospitalityAdminName sql.NullString `db:"hospitality_admin_name"`
	Hostel               sql.NullString `db:"hostel"`
	Room                 sql.NullString `db:"room"`
}

func (row participantRow) toModel() (models.Participant, error) {
	gender, err := models.GenderFromCode(row.Gender)
	if err != nil {
		return models.Participant{}, err
	}
	category, err := models.CategoryFromCode(row.Category)
	if err != nil {
		return models.Participant{}, err
	}

	var verifiedBy *models.Admin
	if row.VerifiedByID.Valid {
		verifiedBy = &models.Admin{ID: row.VerifiedByID.Int64, Name: row.VerifiedByName.String}
	}

	p := models.Participant{
		ID: row.ID,
		Info: models.ParticipantInfo{
			Name:     row.Name,
			Gender:   gender,
			Email:    row.Email,
			Phone:    row.Phone,
			Category: category,
		},
		College:      models.College{ID: row.CollegeID, Name: row.CollegeName},
		Registration: models.RestoreRegistration(row.ID, verifiedBy),
	}
	if row.HospitalityAdminID.Valid {
		p.Hospitality = &models.Hospitality{
			Admin:  models.Admin{ID: row.HospitalityAdminID.Int64, Name: row.HospitalityAdminName.String},
			Hostel: row.Hostel.String,
			Room:   row.Room.String,
		}
	}
	return p, nil
}

// ParticipantRepository stores participants together with their offline
// verification and hospitality rows.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs the repository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// FindByID loads a participant with college, verification and hospitality.
func (r *ParticipantRepository) FindByID(ctx context.Context, id int64) (models.Participant, error) {
	var row participantRow
	if err := r.db.GetContext(ctx, &row, participantSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Participant{}, err
		}
		return models.Participant{}, fmt.Errorf("find participant: %w", err)
	}
	p, err := row.toModel()
	if err != nil {
		return models.Participant{}, fmt.Errorf("decode participant %d: %w", id, err)
	}
	return p, nil
}

// Create inserts a participant and returns the new id.
func (r *ParticipantRepository) Create(ctx context.Context, info models.ParticipantInfo, collegeID int64) (int64, error) {
	return insertParticipant(ctx, r.db, info, collegeID)
}

// CreateVerified inserts a participant already verified by adminID.
func (r *ParticipantRepository) CreateVerified(ctx context.Context, info models.ParticipantInfo, collegeID, adminID int64) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create verified participant: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := insertParticipant(ctx, tx, info, collegeID)
	if err != nil {
		return 0, err
	}
	if err = insertOfflineReg(ctx, tx, id, adminID); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create verified participant: %w", err)
	}
	return id, nil
}

// Update replaces info and college of an existing participant.
func (r *ParticipantRepository) Update(ctx context.Context, id int64, info models.ParticipantInfo, collegeID int64) error {
	const query = `UPDATE participant SET college_id = $2, name = $3, email = $4, phone = $5, gender = $6, category = $7 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, collegeID, info.Name, info.Email, info.Phone, info.Gender.Code(), info.Category.Code())
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCollegeNotFound
		}
		return fmt.Errorf("update participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participant rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Verify records the offline verification of a participant by adminID.
func (r *ParticipantRepository) Verify(ctx context.Context, participantID, adminID int64) error {
	return insertOfflineReg(ctx, r.db, participantID, adminID)
}

// UpsertHospitality assigns or overwrites the hostel room of a participant.
func (r *ParticipantRepository) UpsertHospitality(ctx context.Context, participantID, adminID int64, hostel, room string) error {
	const query = `INSERT INTO hospitality_reg (participant_id, admin_id, hostel, room) VALUES ($1, $2, $3, $4)
ON CONFLICT (participant_id) DO UPDATE SET admin_id = EXCLUDED.admin_id, hostel = EXCLUDED.hostel, room = EXCLUDED.room, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, participantID, adminID, hostel, room); err != nil {
		if isForeignKeyViolation(err) && constraintName(err) == hospitalityParticipantFK {
			return sql.ErrNoRows
		}
		return fmt.Errorf("upsert hospitality: %w", err)
	}
	return nil
}

func insertParticipant(ctx context.Context, q sqlx.QueryerContext, info models.ParticipantInfo, collegeID int64) (int64, error) {
	const query = `INSERT INTO participant (college_id, name, email, phone, gender, category) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	if err := q.QueryRowxContext(ctx, query, collegeID, info.Name, info.Email, info.Phone, info.Gender.Code(), info.Category.Code()).Scan(&id); err != nil {
		if isForeignKeyViolation(err) && constraintName(err) == participantCollegeFK {
			return 0, ErrCollegeNotFound
		}
		return 0, fmt.Errorf("create participant: %w", err)
	}
	return id, nil
}

func insertOfflineReg(ctx context.Context, e sqlx.ExecerContext, participantID, adminID int64) error {
	const query = `INSERT INTO offline_reg (participant_id, admin_id) VALUES ($1, $2)`
	if _, err := e.ExecContext(ctx, query, participantID, adminID); err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrAlreadyVerified
		case isForeignKeyViolation(err) && constraintName(err) == offlineRegParticipantFK:
			return sql.ErrNoRows
		}
		return fmt.Errorf("verify participant: %w", err)
	}
	return nil
}
