package models

// College groups participants. Names are not unique.
type College struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CreateCollegeRequest is the payload for adding a college at the desk.
type CreateCollegeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
