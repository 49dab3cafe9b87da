package auth

import "fmt"

// AccessLevel is the numeric permission tier of a user. Higher levels
// include every permission of the lower ones.
type AccessLevel int

const (
	LevelViewer     AccessLevel = 0
	LevelTechnician AccessLevel = 1
	LevelManager    AccessLevel = 2
	LevelAdmin      AccessLevel = 3
)

// IsValid reports whether the level is one of the known tiers.
func (l AccessLevel) IsValid() bool {
	return l >= LevelViewer && l <= LevelAdmin
}

// Allows reports whether l satisfies the required level.
func (l AccessLevel) Allows(required AccessLevel) bool {
	return l >= required
}

func (l AccessLevel) String() string {
	switch l {
	case LevelViewer:
		return "viewer"
	case LevelTechnician:
		return "technician"
	case LevelManager:
		return "manager"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Principal is the authenticated user acting on a request.
type Principal struct {
	UserID     string
	Username   string
	Level      AccessLevel
	EmployeeID string
}

// RequestScope carries the per-request identity and locale into service calls.
type RequestScope struct {
	Principal Principal
	Locale    string
}

// UserID returns the acting user's id.
func (s RequestScope) UserID() string {
	return s.Principal.UserID
}

