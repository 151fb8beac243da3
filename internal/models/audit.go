package models

import "time"

// Audit actions recorded for desk operations.
const (
	AuditActionLogin             = "LOGIN"
	AuditActionLogout            = "LOGOUT"
	AuditActionParticipantCreate = "PARTICIPANT_CREATE"
	AuditActionParticipantUpdate = "PARTICIPANT_UPDATE"
	AuditActionVerify            = "REGISTRATION_VERIFY"
	AuditActionHospitality       = "HOSPITALITY_UPDATE"
	AuditActionCollegeCreate     = "COLLEGE_CREATE"
)

// Audit resources.
const (
	AuditResourceDesk        = "desk"
	AuditResourceParticipant = "participant"
	AuditResourceCollege     = "college"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	AdminID    *int64    `db:"admin_id" json:"admin_id,omitempty"`
	DeskID     string    `db:"desk_id" json:"desk_id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
