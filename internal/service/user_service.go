package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"arena-social/internal/core/cache"
	"arena-social/internal/domain"
	"arena-social/pkg/utils"
)

const (
	maxUsernameLen      = 64
	maxUsernameAttempts = 1000
)

var usernameCharsRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type UserService struct {
	users domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
}

// NewUserService builds the user directory. c may be nil to disable caching.
func NewUserService(users domain.UserRepository, c *cache.Cache, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserService{users: users, cache: c, ttl: ttl}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) AdminList(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.ListPage(ctx, offset, limit, q, withDeleted)
}

// Resolve loads a live user, bypassing the cache.
func (s *UserService) Resolve(ctx context.Context, key domain.UserLookupKey) (*domain.User, error) {
	return s.users.Find(ctx, key)
}

func (s *UserService) ResolveID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, domain.Validation("invalid user id")
	}
	return s.users.Find(ctx, domain.LookupByID(id))
}

// Profile is the public lookup: cached, and with the stat row created on first read.
func (s *UserService) Profile(ctx context.Context, key domain.UserLookupKey) (*domain.User, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, cacheKey(key), s.ttl, func(ctx context.Context) (*domain.User, error) {
		u, err := s.users.Find(ctx, key)
		if err != nil {
			return nil, err
		}
		if u.Stats == nil {
			st, err := s.users.EnsureStat(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			u.Stats = st
		}
		return u, nil
	})
}

type CreateLocalInput struct {
	Username string
	Password string
	Email    string
}

func (s *UserService) CreateLocal(ctx context.Context, in CreateLocalInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || in.Password == "" || email == "" {
		return nil, domain.Validation("username, password and email are required")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !domain.IsEmail(email) {
		return nil, domain.Validation("invalid email")
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:   username,
		Email:      &email,
		Password:   &hashed,
		AuthMethod: domain.AuthLocal,
		Role:       domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindOrCreateGoogle is idempotent on email: a known email returns the existing
// user, otherwise a fresh username is minted from the email local part.
func (s *UserService) FindOrCreateGoogle(ctx context.Context, googleID, email string) (*domain.User, bool, error) {
	googleID = strings.TrimSpace(googleID)
	email = strings.TrimSpace(email)
	if googleID == "" || email == "" {
		return nil, false, domain.Validation("googleId and email are required")
	}
	if !domain.IsEmail(email) {
		return nil, false, domain.Validation("invalid email")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !domain.IsNotFound(err) {
		return nil, false, err
	}

	username, err := s.uniqueUsername(ctx, usernameBase(email))
	if err != nil {
		return nil, false, err
	}
	u := &domain.User{
		Username:   username,
		Email:      &email,
		GoogleID:   &googleID,
		AuthMethod: domain.AuthGoogle,
		Role:       domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if domain.IsConflict(err) {
			// lost a race on the same email
			if again, e := s.users.FindByEmail(ctx, email); e == nil {
				return again, false, nil
			}
		}
		return nil, false, err
	}
	return u, true, nil
}

// uniqueUsername appends 1, 2, ... to base until the name is free.
func (s *UserService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for suffix := 1; suffix <= maxUsernameAttempts; suffix++ {
		taken, err := s.users.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
	return "", domain.Internal("generate username failed", fmt.Errorf("no free username for %q", base))
}

func usernameBase(email string) string {
	base := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		base = email[:at]
	}
	base = usernameCharsRe.ReplaceAllString(base, "")
	if len(base) > maxUsernameLen-8 {
		base = base[:maxUsernameLen-8]
	}
	if base == "" || strings.Trim(base, "0123456789") == "" {
		base = "user" + base
	}
	return base
}

// validateUsername keeps usernames distinguishable from ids and emails on lookup.
func validateUsername(username string) error {
	switch {
	case len(username) > maxUsernameLen:
		return domain.Validation("username too long")
	case strings.Trim(username, "0123456789") == "":
		return domain.Validation("username must contain a non-digit character")
	case strings.Contains(username, "@"):
		return domain.Validation("username must not contain '@'")
	case strings.HasPrefix(username, "deleted_user_"):
		return domain.Validation("username is reserved")
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	hashed, err := utils.HashPassword(pw)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Validation("password too long")
	}
	if err != nil {
		return "", domain.Internal("hash password failed", err)
	}
	return hashed, nil
}

type ProfileInput struct {
	Username     *string
	Biography    *string
	Password     *string
	TwoFASecret  *string
	TwoFAEnabled *bool
}

func (s *UserService) UpdateProfile(ctx context.Context, key domain.UserLookupKey, in ProfileInput) (*domain.User, error) {
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	patch := domain.ProfilePatch{
		Biography:    in.Biography,
		TwoFASecret:  in.TwoFASecret,
		TwoFAEnabled: in.TwoFAEnabled,
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, domain.Validation("username must not be empty")
		}
		if err := validateUsername(name); err != nil {
			return nil, err
		}
		if name != u.Username {
			taken, err := s.users.UsernameTaken(ctx, name)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.Conflict("Username already taken")
			}
			patch.Username = &name
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.Validation("password must not be empty")
		}
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hashed
	}
	if err := s.users.UpdateProfile(ctx, u.ID, patch); err != nil {
		return nil, err
	}
	s.invalidate(ctx, u)
	return s.users.Find(ctx, domain.LookupByID(u.ID))
}

func (s *UserService) UpdateAvatar(ctx context.Context, key domain.UserLookupKey, avatar string) (*domain.User, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return nil, domain.Validation("avatar is required")
	}
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, u.ID, avatar); err != nil {
		return nil, err
	}
	s.invalidate(ctx, u)
	u.Avatar = avatar
	return u, nil
}

// Anonymize irreversibly scrubs the user's PII and hides it from lookups.
func (s *UserService) Anonymize(ctx context.Context, key domain.UserLookupKey) (uint, error) {
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return 0, err
	}
	before, err := s.users.Anonymize(ctx, u.ID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, before)
	return before.ID, nil
}

// Login checks a LOCAL user's password. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, domain.Validation("identifier and password are required")
	}
	key, err := domain.ParseLookupKey(identifier)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Find(ctx, key)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if u.AuthMethod != domain.AuthLocal || u.Password == nil || !utils.CheckPassword(password, *u.Password) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	return u, nil
}

func (s *UserService) Settings(ctx context.Context, key domain.UserLookupKey) (*domain.Settings, error) {
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.users.FindSettings(ctx, u.ID)
}

// CreateSettings creates the user's single settings row; a second call conflicts.
func (s *UserService) CreateSettings(ctx context.Context, key domain.UserLookupKey, p domain.SettingsPatch) (*domain.Settings, error) {
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	st := &domain.Settings{
		UserID:               u.ID,
		Language:             "en",
		Theme:                "dark",
		SoundEnabled:         true,
		NotificationsEnabled: true,
	}
	p.Apply(st)
	if err := s.users.CreateSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, key domain.UserLookupKey, p domain.SettingsPatch) (*domain.Settings, error) {
	u, err := s.users.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	st, err := s.users.FindSettings(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	p.Apply(st)
	if err := s.users.SaveSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func cacheKey(key domain.UserLookupKey) string { return "user:" + key.String() }

// Forget drops cached profiles of users whose derived data changed elsewhere.
func (s *UserService) Forget(ctx context.Context, users ...*domain.User) {
	for _, u := range users {
		s.invalidate(ctx, u)
	}
}

// invalidate drops every cached form under which u may be stored.
func (s *UserService) invalidate(ctx context.Context, u *domain.User) {
	if s.cache == nil || u == nil {
		return
	}
	keys := []string{
		cacheKey(domain.LookupByID(u.ID)),
		cacheKey(domain.UserLookupKey{Kind: domain.ByUsername, Value: u.Username}),
	}
	if u.Email != nil {
		keys = append(keys, cacheKey(domain.UserLookupKey{Kind: domain.ByEmail, Value: *u.Email}))
	}
	s.cache.Delete(ctx, keys...)
}
