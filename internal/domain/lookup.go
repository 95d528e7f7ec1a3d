package domain

import (
	"regexp"
	"strconv"
	"strings"
)

type LookupKind int

const (
	ByID LookupKind = iota
	ByUsername
	ByEmail
)

func (k LookupKind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByEmail:
		return "email"
	default:
		return "username"
	}
}

// UserLookupKey identifies a user by exactly one of id, username or email.
type UserLookupKey struct {
	Kind  LookupKind
	ID    uint
	Value string
}

var (
	emailRe  = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)
	digitsRe = regexp.MustCompile(`^\d+$`)
)

func LookupByID(id uint) UserLookupKey { return UserLookupKey{Kind: ByID, ID: id} }

// ParseLookupKey classifies a raw path identifier: email pattern, then all digits, then username.
func ParseLookupKey(raw string) (UserLookupKey, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return UserLookupKey{}, Validation("missing user identifier")
	case emailRe.MatchString(s):
		return UserLookupKey{Kind: ByEmail, Value: s}, nil
	case digitsRe.MatchString(s):
		id, err := strconv.ParseUint(s, 10, 0)
		if err != nil || id == 0 {
			return UserLookupKey{}, Validation("invalid user id")
		}
		return UserLookupKey{Kind: ByID, ID: uint(id)}, nil
	default:
		return UserLookupKey{Kind: ByUsername, Value: s}, nil
	}
}

// String renders the key in a form usable as a cache key suffix.
func (k UserLookupKey) String() string {
	if k.Kind == ByID {
		return "id:" + strconv.FormatUint(uint64(k.ID), 10)
	}
	return k.Kind.String() + ":" + k.Value
}

func IsEmail(s string) bool { return emailRe.MatchString(s) }
