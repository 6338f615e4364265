// Package models defines the client-side identity types: the signed-in user,
// the opaque credential issued by the backend and the session pairing them.
package models

// User is the profile of the signed-in customer as returned by the backend.
type User struct {
	ID      string `json:"id"`
	Phone   string `json:"phone"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// UserPatch is a partial update of a User. Nil fields are left untouched;
// a pointer to "" clears the field.
type UserPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.Pincode == nil
}

// Apply returns a copy of u with the non-nil fields of p merged in.
// ID and Phone are identity fields and cannot be patched.
func (u User) Apply(p UserPatch) User {
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
	return u
}

// ProfileComplete reports whether the user has filled in the fields needed
// before ordering. Routing on it is the caller's business.
func (u User) ProfileComplete() bool {
	return u.Name != ""
}
