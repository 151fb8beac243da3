// Package memory is the in-process desk backend. Every desk opened against the same
// Store sees the same data; nothing survives a restart.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/repository"
)

// Ids below this value are reserved so printed participant codes keep six digits.
const idBase = 1000

type hospitalityRecord struct {
	adminID int64
	hostel  string
	room    string
}

type participantRecord struct {
	id          int64
	info        models.ParticipantInfo
	collegeID   int64
	verifiedBy  *int64
	hospitality *hospitalityRecord
}

// Store keeps admins, colleges and participants in maps guarded by one lock.
type Store struct {
	mu sync.RWMutex

	latency time.Duration

	lastParticipantID int64
	lastCollegeID     int64
	lastAdminID       int64

	participants map[int64]*participantRecord
	colleges     map[int64]models.College
	admins       map[int64]models.AdminAccount
	usernames    map[string]int64
	audit        []models.AuditLog
}

// NewStore returns an empty store. latency is added to every call to mimic a
// remote database.
func NewStore(latency time.Duration) *Store {
	return &Store{
		latency:           latency,
		lastParticipantID: idBase,
		lastCollegeID:     idBase,
		participants:      make(map[int64]*participantRecord),
		colleges:          make(map[int64]models.College),
		admins:            make(map[int64]models.AdminAccount),
		usernames:         make(map[string]int64),
	}
}

// Participants returns the participant repository view of the store.
func (s *Store) Participants() *ParticipantRepository { return &ParticipantRepository{s: s} }

// Colleges returns the college repository view of the store.
func (s *Store) Colleges() *CollegeRepository { return &CollegeRepository{s: s} }

// Admins returns the admin repository view of the store.
func (s *Store) Admins() *AdminRepository { return &AdminRepository{s: s} }

// Audit returns the audit repository view of the store.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{s: s} }

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) adminByID(id int64) models.Admin {
	if account, ok := s.admins[id]; ok {
		return account.Admin
	}
	return models.Admin{ID: id}
}

func (s *Store) toParticipant(rec *participantRecord) models.Participant {
	var verifiedBy *models.Admin
	if rec.verifiedBy != nil {
		admin := s.adminByID(*rec.verifiedBy)
		verifiedBy = &admin
	}
	p := models.Participant{
		ID:           rec.id,
		Info:         rec.info,
		College:      s.colleges[rec.collegeID],
		Registration: models.RestoreRegistration(rec.id, verifiedBy),
	}
	if rec.hospitality != nil {
		p.Hospitality = &models.Hospitality{
			Admin:  s.adminByID(rec.hospitality.adminID),
			Hostel: rec.hospitality.hostel,
			Room:   rec.hospitality.room,
		}
	}
	return p
}

// insertParticipant must be called with the write lock held.
func (s *Store) insertParticipant(id int64, info models.ParticipantInfo, collegeID int64) (*participantRecord, error) {
	if _, ok := s.colleges[collegeID]; !ok {
		return nil, repository.ErrCollegeNotFound
	}
	if id == 0 {
		s.lastParticipantID++
		id = s.lastParticipantID
	} else if id > s.lastParticipantID {
		s.lastParticipantID = id
	}
	rec := &participantRecord{id: id, info: info, collegeID: collegeID}
	s.participants[id] = rec
	return rec, nil
}

// ParticipantRepository is the participant view of a Store.
type ParticipantRepository struct {
	s *Store
}

// FindByID returns sql.ErrNoRows when the participant does not exist.
func (r *ParticipantRepository) FindByID(ctx context.Context, id int64) (models.Participant, error) {
	if err := r.s.wait(ctx); err != nil {
		return models.Participant{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.participants[id]
	if !ok {
		return models.Participant{}, sql.ErrNoRows
	}
	return r.s.toParticipant(rec), nil
}

// Create stores a participant under the next free id.
func (r *ParticipantRepository) Create(ctx context.Context, info models.ParticipantInfo, collegeID int64) (int64, error) {
	if err := r.s.wait(ctx); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, err := r.s.insertParticipant(0, info, collegeID)
	if err != nil {
		return 0, err
	}
	return rec.id, nil
}

// CreateVerified stores a participant already verified by adminID.
func (r *ParticipantRepository) CreateVerified(ctx context.Context, info models.ParticipantInfo, collegeID, adminID int64) (int64, error) {
	if err := r.s.wait(ctx); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, err := r.s.insertParticipant(0, info, collegeID)
	if err != nil {
		return 0, err
	}
	verifier := adminID
	rec.verifiedBy = &verifier
	return rec.id, nil
}

// Update replaces info and college of an existing participant.
func (r *ParticipantRepository) Update(ctx context.Context, id int64, info models.ParticipantInfo, collegeID int64) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.participants[id]
	if !ok {
		return sql.ErrNoRows
	}
	if _, ok := r.s.colleges[collegeID]; !ok {
		return repository.ErrCollegeNotFound
	}
	rec.info = info
	rec.collegeID = collegeID
	return nil
}

// Verify marks the participant verified by adminID exactly once.
func (r *ParticipantRepository) Verify(ctx context.Context, participantID, adminID int64) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.participants[participantID]
	if !ok {
		return sql.ErrNoRows
	}
	if rec.verifiedBy != nil {
		return repository.ErrAlreadyVerified
	}
	verifier := adminID
	rec.verifiedBy = &verifier
	return nil
}

// UpsertHospitality overwrites the hostel room of a participant.
func (r *ParticipantRepository) UpsertHospitality(ctx context.Context, participantID, adminID int64, hostel, room string) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.participants[participantID]
	if !ok {
		return sql.ErrNoRows
	}
	rec.hospitality = &hospitalityRecord{adminID: adminID, hostel: hostel, room: room}
	return nil
}

// CollegeRepository is the college view of a Store.
type CollegeRepository struct {
	s *Store
}

// Create adds a college under the next free id. Names may repeat.
func (r *CollegeRepository) Create(ctx context.Context, name string) (models.College, error) {
	if err := r.s.wait(ctx); err != nil {
		return models.College{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastCollegeID++
	college := models.College{ID: r.s.lastCollegeID, Name: name}
	r.s.colleges[college.ID] = college
	return college, nil
}

// FindByID returns sql.ErrNoRows when the college does not exist.
func (r *CollegeRepository) FindByID(ctx context.Context, id int64) (models.College, error) {
	if err := r.s.wait(ctx); err != nil {
		return models.College{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	college, ok := r.s.colleges[id]
	if !ok {
		return models.College{}, sql.ErrNoRows
	}
	return college, nil
}

// List returns every college in no particular order.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	colleges := make([]models.College, 0, len(r.s.colleges))
	for _, c := range r.s.colleges {
		colleges = append(colleges, c)
	}
	return colleges, nil
}

// AdminRepository is the admin view of a Store.
type AdminRepository struct {
	s *Store
}

// FindByUsername returns sql.ErrNoRows for unknown usernames.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.usernames[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	account := r.s.admins[id]
	return &account, nil
}

// Count returns the number of admin accounts.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	if err := r.s.wait(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.admins), nil
}

// Create stores an account and sets its id.
func (r *AdminRepository) Create(ctx context.Context, account *models.AdminAccount) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.usernames[account.Username]; taken {
		return repository.ErrAdminExists
	}
	r.s.lastAdminID++
	account.ID = r.s.lastAdminID
	r.s.admins[account.ID] = *account
	r.s.usernames[account.Username] = account.ID
	return nil
}

// AuditRepository keeps the audit trail in memory.
type AuditRepository struct {
	s *Store
}

// Create appends an audit entry.
func (r *AuditRepository) Create(_ context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

// List returns a copy of the recorded entries in insertion order.
func (r *AuditRepository) List() []models.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]models.AuditLog(nil), r.s.audit...)
}

// Demo credentials created by SeedDemo.
const (
	DemoAdminName     = "Admin"
	DemoAdminUsername = "admin"
	DemoAdminPassword = "admin"
)

var demoColleges = []string{
	"NIT Calicut",
	"GEC Kannur",
	"GEC Thrissur",
	"CET Trivandrum",
	"TKM Kollam",
	"Amrita Coimbatore",
}

// SeedDemo loads the demo admin, colleges and two participants. The participants
// take the ids just below the first id handed out afterwards.
func (s *Store) SeedDemo(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	admin := &models.AdminAccount{
		Admin:        models.Admin{Name: DemoAdminName},
		Username:     DemoAdminUsername,
		PasswordHash: string(hash),
	}
	if err := s.Admins().Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	colleges := make([]models.College, 0, len(demoColleges))
	for _, name := range demoColleges {
		c, err := s.Colleges().Create(ctx, name)
		if err != nil {
			return fmt.Errorf("seed college %s: %w", name, err)
		}
		colleges = append(colleges, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.insertParticipant(idBase-1, models.ParticipantInfo{
		Name:     "Test",
		Gender:   models.GenderMale,
		Email:    "test@gmail.com",
		Phone:    "9000000001",
		Category: models.CategoryRagam,
	}, colleges[0].ID); err != nil {
		return fmt.Errorf("seed participant: %w", err)
	}
	verified, err := s.insertParticipant(idBase, models.ParticipantInfo{
		Name:     "Test 2",
		Gender:   models.GenderFemale,
		Email:    "test2@gmail.com",
		Phone:    "9000000002",
		Category: models.CategoryKalotsavam,
	}, colleges[1].ID)
	if err != nil {
		return fmt.Errorf("seed participant: %w", err)
	}
	verifier := admin.ID
	verified.verifiedBy = &verifier
	return nil
}
