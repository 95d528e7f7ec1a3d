package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-social/internal/domain"
	"arena-social/internal/testutil"
	"arena-social/pkg/utils"
)

func TestRun_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	first, err := New(db, nil, Options{Password: "dev", Seed: 1}).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Users, len(DefaultFixtures))
	assert.Equal(t, len(DefaultFixtures), first.CreatedUsers)
	assert.Equal(t, len(DefaultFixtures), first.CreatedStats)
	assert.Equal(t, 3, first.Matches)

	second, err := New(db, nil, Options{Password: "dev", Seed: 2}).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, second.Users, len(DefaultFixtures))
	assert.Zero(t, second.CreatedUsers)
	assert.Zero(t, second.CreatedStats)
	assert.Zero(t, second.Matches)
	for i := range first.Users {
		assert.Equal(t, first.Users[i].ID, second.Users[i].ID)
	}

	var matches, stats int64
	require.NoError(t, db.Model(&domain.Match{}).Count(&matches).Error)
	require.NoError(t, db.Model(&domain.Stat{}).Count(&stats).Error)
	assert.Equal(t, int64(3), matches)
	assert.Equal(t, int64(3), stats)

	var u domain.User
	require.NoError(t, db.First(&u, "username = ?", "jcheron").Error)
	require.NotNil(t, u.Password)
	assert.True(t, utils.CheckPassword("dev", *u.Password))
}

func TestRun_ExtraUsers(t *testing.T) {
	db := testutil.NewDB(t)

	rep, err := New(db, nil, Options{Extra: 4, Seed: 42}).Run(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rep.Users), len(DefaultFixtures))
	assert.LessOrEqual(t, rep.CreatedUsers, len(rep.Users))
	n := len(rep.Users)
	assert.Equal(t, n*(n-1)/2, rep.Matches)

	for _, u := range rep.Users {
		assert.Nil(t, u.Password)
		assert.NotContains(t, u.Username, "@")
	}
}
