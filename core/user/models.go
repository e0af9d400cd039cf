package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/entregas/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Identifier   string    `json:"identifier"` // "matricula"
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// SetPassword hashes pwd with bcrypt. A cost of 0 uses bcrypt.DefaultCost.
func (u *User) SetPassword(pwd string, cost ...int) error {
	c := bcrypt.DefaultCost
	if len(cost) > 0 && cost[0] > 0 {
		c = cost[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), c)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// Identity returns the minimal projection of u handed out to clients.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Identifier: u.Identifier, Role: u.Role}
}

// Identity is who a request is made on behalf of.
// It carries no secret material and is never held globally.
type Identity struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
}

func (id Identity) IsZero() bool { return id.Identifier == "" }

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Identifier string `json:"identifier" validate:"required,notblank,max=64"`
	Password   string `json:"secret" validate:"required,secret"`
	Role       string `json:"role" validate:"omitempty,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Identifier = core.CleanString(nu.Identifier)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return validate.Struct(nu)
}
