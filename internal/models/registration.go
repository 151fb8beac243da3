package models

// Registration is the verification state of a participant. It is either NotVerified
// or Verified; no other implementations exist outside this package.
type Registration interface {
	registration()
	IsVerified() bool
}

// NotVerified is the token proving a participant still awaits desk verification.
// Desk sessions accept only the tokens carried by participants they returned.
type NotVerified struct {
	id int64
}

// ID returns the participant the token belongs to.
func (n NotVerified) ID() int64 { return n.id }

// IsZero reports whether the token was never issued.
func (n NotVerified) IsZero() bool { return n.id == 0 }

// IsVerified implements Registration.
func (NotVerified) IsVerified() bool { return false }

func (NotVerified) registration() {}

// Verify consumes the token and records admin as the verifier.
func (n NotVerified) Verify(admin Admin) Verified {
	return Verified{admin: admin}
}

// Verified records the admin who verified the participant at the desk.
type Verified struct {
	admin Admin
}

// Admin returns the verifying admin.
func (v Verified) Admin() Admin { return v.admin }

// IsVerified implements Registration.
func (Verified) IsVerified() bool { return true }

func (Verified) registration() {}

// RestoreRegistration rebuilds the registration of a stored participant. A nil
// verifier means the participant has not been verified yet. Storage backends call
// it when loading rows; desk sessions refuse NotVerified tokens they did not return.
func RestoreRegistration(participantID int64, verifiedBy *Admin) Registration {
	if verifiedBy == nil {
		return NotVerified{id: participantID}
	}
	return Verified{admin: *verifiedBy}
}
