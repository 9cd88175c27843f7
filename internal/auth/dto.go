package auth

import (
	"time"

	"github.com/angelmondragon/parkinglot-manager/internal/users"
	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
)

// MsgInvalidCredentials is shown on the login page for any failed attempt.
const MsgInvalidCredentials = "Invalid username or password!"

// LoginRequest captures the credentials posted by the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// LoginResult carries the signed session token and the identity it encodes.
type LoginResult struct {
	Token     string
	AccessID  string
	ExpiresAt time.Time
	Principal pkgAuth.Principal
	User      *users.UserDTO
}
