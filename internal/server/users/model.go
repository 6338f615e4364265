package users

import "time"

type User struct {
	ID           string
	Phone        string
	Name         string
	Email        string
	Address      string
	Pincode      string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Patch lists the profile fields a user may change. Nil means unchanged.
type Patch struct {
	Name    *string
	Email   *string
	Address *string
	Pincode *string
}

func (u *User) apply(p Patch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Pincode != nil {
		u.Pincode = *p.Pincode
	}
}
