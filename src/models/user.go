package models

// Role of an authenticated principal.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserProfile is stored at profiles/<principalId>.
type UserProfile struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	Name      string `bson:"name" json:"name"`
	Role      Role   `bson:"role" json:"role"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
	StudentID string `bson:"studentId,omitempty" json:"studentId,omitempty"`
}

// ProfilePatch carries the editable profile fields. Nil means unchanged.
type ProfilePatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

// Principal is the authenticated caller as carried by the access token.
type Principal struct {
	ID        string
	Role      Role
	Username  string
	StudentID string
	TokenID   string
}
