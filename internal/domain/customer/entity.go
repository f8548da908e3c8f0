// internal/domain/customer/entity.go
package customer

import (
	"errors"
	"strings"
)

// Customer is the identity issued by the remote commerce platform.
// This system never stores customers itself; it only resolves and references
// platform ids.
type Customer struct {
	ID    string `json:"id"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Errors (single source)
var (
	ErrInvalidID          = errors.New("customer: invalid id")
	ErrInvalidPhone       = errors.New("customer: invalid phone")
	ErrEmailDomainBlocked = errors.New("customer: email domain not allowed")
)

// allowedEmailDomains is the checkout email allow-list. Updates targeting any
// other domain are rejected before the platform is called.
var allowedEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"icloud.com",
	"proton.me",
}

// EmailDomainAllowed reports whether the email's domain is on the allow-list.
// A malformed address (no "@", empty domain) is never allowed.
func EmailDomainAllowed(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(e, "@")
	if at <= 0 || at == len(e)-1 {
		return false
	}
	domain := e[at+1:]
	for _, d := range allowedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// NormalizePhone strips spaces and dashes so lookups against the platform
// use one canonical form. Leading "+" is preserved.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")
	return p
}
