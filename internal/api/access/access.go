// Package access decides who may do what. It has no I/O; callers pass the
// subject, the HTTP method and the resource kind, plus ownership for object
// level checks.
package access

import (
	"net/http"

	"yamdb/internal/api/models"
)

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Status maps a decision to its HTTP status code.
func (d Decision) Status() int {
	switch d {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	}
	return http.StatusOK
}

type Resource int

const (
	Category Resource = iota
	Genre
	Title
	Review
	Comment
	Users
	Profile
)

// SafeMethod reports whether method only reads.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Check is the collection level rule. A nil subject is anonymous.
func Check(subject *models.User, method string, resource Resource) Decision {
	switch resource {
	case Users:
		if subject == nil {
			return Unauthenticated
		}
		if !subject.IsAdmin() {
			return Forbidden
		}
		return Allow

	case Profile:
		if subject == nil {
			return Unauthenticated
		}
		return Allow

	case Category, Genre, Title:
		if SafeMethod(method) {
			return Allow
		}
		if subject == nil {
			return Unauthenticated
		}
		if !subject.IsAdmin() {
			return Forbidden
		}
		return Allow

	case Review, Comment:
		if SafeMethod(method) {
			return Allow
		}
		if subject == nil {
			return Unauthenticated
		}
		return Allow
	}
	return Forbidden
}

// CheckObject adds the ownership rule for a loaded object: authors, moderators
// and admins may change reviews and comments.
func CheckObject(subject *models.User, method string, resource Resource, isOwner bool) Decision {
	if d := Check(subject, method, resource); d != Allow {
		return d
	}
	if SafeMethod(method) {
		return Allow
	}

	switch resource {
	case Review, Comment:
		if isOwner || subject.IsModerator() || subject.IsAdmin() {
			return Allow
		}
		return Forbidden
	}
	return Allow
}
