// Package models defines the client-side view of server entities.
package models

// User is the authenticated actor's profile as returned by the backend.
// The session manager owns the single live instance: it is replaced
// wholesale on login/bootstrap and patched in place by ApplyPatch.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	CompanyID    string `json:"company_id"`
	UserTypeID   int64  `json:"user_type_id"`
	UserTypeName string `json:"user_type_name"`
}

// UserPatch is a shallow partial update of a User. Nil fields are left
// untouched. Identity (ID) and tenant (CompanyID) are deliberately not
// patchable.
type UserPatch struct {
	Email        *string
	FirstName    *string
	LastName     *string
	UserTypeName *string
}

// IsZero reports whether the patch changes nothing.
func (p UserPatch) IsZero() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.UserTypeName == nil
}

// ApplyPatch merges the non-nil fields of p into u.
func (u *User) ApplyPatch(p UserPatch) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.UserTypeName != nil {
		u.UserTypeName = *p.UserTypeName
	}
}
