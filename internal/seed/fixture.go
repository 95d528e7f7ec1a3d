// Package seed inserts demo fixtures. It is meant for local and test databases.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arena-social/internal/domain"
	"arena-social/internal/repo"
	"arena-social/pkg/utils"
)

type Fixture struct {
	Username string
	Email    string
}

// DefaultFixtures are always present after a seed run.
var DefaultFixtures = []Fixture{
	{Username: "jcheron", Email: "jcheron@student.42lehavre.fr"},
	{Username: "cpoulain", Email: "cpoulain@student.42lehavre.fr"},
	{Username: "guphilip", Email: "guphilip@student.42lehavre.fr"},
}

type Options struct {
	Extra    int    // random users on top of DefaultFixtures
	Password string // dev password for every fixture; empty leaves them without one
	Seed     int64  // 0 picks a time-based seed
}

type Report struct {
	Users        []domain.User
	CreatedUsers int
	CreatedStats int
	Matches      int
}

type Seeder struct {
	db    *gorm.DB
	users *repo.UserRepo
	log   *zap.Logger
	faker *gofakeit.Faker
	rnd   *rand.Rand
	opts  Options
}

func New(db *gorm.DB, log *zap.Logger, opts Options) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:    db,
		users: repo.NewUserRepo(db),
		log:   log,
		faker: gofakeit.New(seed),
		rnd:   rand.New(rand.NewSource(seed)),
		opts:  opts,
	}
}

// Run is safe to repeat: existing users are reused, existing stat rows are kept
// and a pair that already played gets no new match.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	fixtures := append([]Fixture(nil), DefaultFixtures...)
	for i := 0; i < s.opts.Extra; i++ {
		fixtures = append(fixtures, s.fakeFixture())
	}

	rep := &Report{}
	for _, f := range fixtures {
		u, created, err := s.ensureUser(ctx, f)
		if err != nil {
			s.log.Error("insert fixture failed", zap.String("username", f.Username), zap.Error(err))
			continue
		}
		if created {
			rep.CreatedUsers++
			s.log.Info("inserted", zap.String("username", u.Username))
		} else {
			s.log.Info("duplicate skipped", zap.String("username", f.Username))
		}
		rep.Users = append(rep.Users, *u)

		ok, err := s.ensureStat(ctx, u.ID)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.CreatedStats++
		}
	}

	for i := 0; i < len(rep.Users); i++ {
		for j := i + 1; j < len(rep.Users); j++ {
			ok, err := s.ensureMatch(ctx, rep.Users[i].ID, rep.Users[j].ID)
			if err != nil {
				return rep, err
			}
			if ok {
				rep.Matches++
			}
		}
	}
	s.log.Info("seed completed",
		zap.Int("users", len(rep.Users)),
		zap.Int("created_users", rep.CreatedUsers),
		zap.Int("created_stats", rep.CreatedStats),
		zap.Int("matches", rep.Matches),
	)
	return rep, nil
}

func (s *Seeder) fakeFixture() Fixture {
	name := strings.ToLower(s.faker.Username())
	name = strings.NewReplacer(" ", "", "@", "").Replace(name)
	if strings.Trim(name, "0123456789") == "" {
		name = "player" + name
	}
	return Fixture{
		Username: name,
		Email:    fmt.Sprintf("%s@%s", name, s.faker.DomainName()),
	}
}

// ensureUser inserts f; a duplicate key means an earlier run already did.
func (s *Seeder) ensureUser(ctx context.Context, f Fixture) (*domain.User, bool, error) {
	email := f.Email
	u := &domain.User{
		Username:   f.Username,
		Email:      &email,
		AuthMethod: domain.AuthLocal,
		Role:       domain.RoleUser,
		Biography:  s.faker.Sentence(8),
		Avatar:     fmt.Sprintf("https://picsum.photos/seed/%s/200/200", f.Username),
	}
	if s.opts.Password != "" {
		hashed, err := utils.HashPassword(s.opts.Password)
		if err != nil {
			return nil, false, err
		}
		u.Password = &hashed
	}
	err := s.users.Create(ctx, u)
	if err == nil {
		return u, true, nil
	}
	if !domain.IsConflict(err) {
		return nil, false, err
	}
	existing, ferr := s.users.FindByEmail(ctx, email)
	if ferr != nil {
		return nil, false, ferr
	}
	return existing, false, nil
}

func (s *Seeder) ensureStat(ctx context.Context, userID uint) (bool, error) {
	st := domain.Stat{
		UserID: userID,
		Wins:   s.rnd.Intn(10),
		Losses: s.rnd.Intn(10),
		Streak: s.rnd.Intn(5),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&st)
	if res.Error != nil {
		return false, fmt.Errorf("seed stat for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ensureMatch writes the row directly: seeded counters are random and must not
// be shifted by the ledger's stat updates.
func (s *Seeder) ensureMatch(ctx context.Context, p1, p2 uint) (bool, error) {
	db := s.db.WithContext(ctx)
	var n int64
	err := db.Model(&domain.Match{}).
		Where("(player1_id = ? AND player2_id = ?) OR (player1_id = ? AND player2_id = ?)", p1, p2, p2, p1).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check match: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	second := p2
	m := domain.Match{
		Player1ID:    p1,
		Player2ID:    &second,
		Player1Score: s.rnd.Intn(10),
		Player2Score: s.rnd.Intn(10),
		Status:       domain.MatchDone,
		PlayedAt:     time.Now().UTC(),
	}
	if err := db.Omit(clause.Associations).Create(&m).Error; err != nil {
		return false, fmt.Errorf("seed match: %w", err)
	}
	return true, nil
}
