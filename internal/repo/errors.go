package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"arena-social/internal/domain"
)

// isDupKey recognises unique violations. TranslateError covers the drivers that
// support it; the message check catches the rest.
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// translate maps a persistence error onto the domain taxonomy.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return domain.NotFound(op + ": not found")
	case isDupKey(err):
		return domain.Conflict(op + ": already exists")
	default:
		return domain.Internal(op+" failed", err)
	}
}

// summaries projects user rows onto identity summaries.
func summaries(us []domain.User) []domain.UserSummary {
	out := make([]domain.UserSummary, 0, len(us))
	for _, u := range us {
		out = append(out, domain.UserSummary{ID: u.ID, Username: u.Username})
	}
	return out
}

// unscopedUsers loads user rows even once anonymized, so historical
// records keep pointing at a resolvable identity.
func unscopedUsers(db *gorm.DB) *gorm.DB { return db.Unscoped() }
