package models

// UserRole is the backend-assigned role of a user
type UserRole string

const (
	RoleCoach   UserRole = "coach"
	RoleStudent UserRole = "student"
)

// User represents a known user of the scheduling service
type User struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber"`
	Role        UserRole `json:"role"`
}

// IsCoach returns true if the user has the coach role
func (u User) IsCoach() bool {
	return u.Role == RoleCoach
}

// IsStudent returns true if the user has the student role
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// FindUser returns the user with the given id from users
func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
