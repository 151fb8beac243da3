package models

// Admin is the operator a desk session acts on behalf of.
type Admin struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// AdminAccount is the persisted admin row including login credentials.
type AdminAccount struct {
	Admin
	Username     string `db:"username" json:"-"`
	PasswordHash string `db:"password_hash" json:"-"`
}
