package account

import "errors"

// Each failure condition maps to a fixed user-facing message so the client
// never has to interpret backend error codes.
var (
	ErrEmailInUse       = errors.New("account: email already registered")
	ErrInvalidEmail     = errors.New("account: invalid email")
	ErrWeakPassword     = errors.New("account: weak password")
	ErrWrongCredentials = errors.New("account: wrong credentials")
	ErrRateLimited      = errors.New("account: rate limited")
	ErrNotFound         = errors.New("account: not found")
	ErrUnavailable      = errors.New("account: backend unavailable")
)

var userMessages = map[error]string{
	ErrEmailInUse:       "This email address is already registered.",
	ErrInvalidEmail:     "Please enter a valid email address.",
	ErrWeakPassword:     "Password must be at least 8 characters long.",
	ErrWrongCredentials: "Incorrect email or password.",
	ErrRateLimited:      "Too many attempts. Please try again later.",
	ErrNotFound:         "No account found for that email address.",
	ErrUnavailable:      "Something went wrong. Please check your connection and try again.",
}

// UserMessage maps a service error to its user-facing string, with a
// default fallback for unknown errors.
func UserMessage(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Something went wrong. Please try again."
}
