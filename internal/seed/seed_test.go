package seed

import (
	"context"
	"regexp"
	"testing"
	"time"
	"unicode/utf8"

	"vidtube/internal/auth"
	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

func TestFactory_BuildsValidEntities(t *testing.T) {
	f := NewFactory(42, 30)
	user := f.BuildUser(7, "hash")
	user.ID = 1

	assert.Regexp(t, usernamePattern, user.Username)
	assert.Contains(t, user.Email, "@vidtube.test")
	assert.WithinDuration(t, time.Now(), user.CreatedAt, 31*24*time.Hour)

	video := f.BuildVideo(user)
	assert.Equal(t, user.ID, video.OwnerID)
	assert.LessOrEqual(t, utf8.RuneCountInString(video.Title), 200)
	assert.False(t, video.CreatedAt.Before(user.CreatedAt))

	for i := 0; i < 50; i++ {
		tweet := f.BuildTweet(user)
		assert.LessOrEqual(t, utf8.RuneCountInString(tweet.Content), models.MaxTweetLength)
	}

	picked := f.Pick(5, 10)
	assert.Len(t, picked, 5)
}

func TestFactory_SameSeedSameUsers(t *testing.T) {
	a := NewFactory(99, 10).BuildUser(1, "h")
	b := NewFactory(99, 10).BuildUser(1, "h")
	assert.Equal(t, a.Username, b.Username)
	assert.Equal(t, a.FullName, b.FullName)
}

func TestSeeder_RunAndClear(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	opts := Options{
		Users:            4,
		VideosPerUser:    3,
		CommentsPerVideo: 2,
		TweetsPerUser:    2,
		PlaylistsPerUser: 1,
		MaxDays:          10,
		RandSeed:         1,
	}
	s := NewSeeder(db, opts)
	sum, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 12, sum.Videos)
	assert.Equal(t, 24, sum.Comments)
	assert.Equal(t, 8, sum.Tweets)
	assert.Equal(t, 4, sum.Playlists)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 4)
	assert.True(t, auth.VerifyPassword(users[0].Password, DefaultPassword))

	var selfSubs int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("subscriber_id = channel_id").Count(&selfSubs).Error)
	assert.Zero(t, selfSubs)

	var entries []models.PlaylistVideo
	require.NoError(t, db.Order("playlist_id, position").Find(&entries).Error)
	next := map[uint]int{}
	for _, e := range entries {
		assert.Equal(t, next[e.PlaylistID], e.Position)
		next[e.PlaylistID]++
	}

	require.NoError(t, s.ClearAll(ctx))
	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSeeder_RequiresUsers(t *testing.T) {
	_, err := NewSeeder(testutil.NewTestDB(t), Options{}).Run(context.Background())
	assert.Error(t, err)
}
