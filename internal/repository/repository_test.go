package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestLikeRepository_ToggleConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE liked_by_id = $1 AND target_type = $2 AND target_id = $3`)).
		WithArgs(1, models.LikeTargetVideo, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	result, err := repo.Toggle(context.Background(), 1, models.LikeTargetVideo, 7)
	assert.Nil(t, result)
	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_ToggleSurfacesStoreErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), 1, models.LikeTargetTweet, 3)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintError(errors.New("timeout")))
	assert.False(t, isUniqueConstraintError(nil))
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%go\_lang\%%`, containsPattern("Go_Lang%"))
}

func seedFeed(t *testing.T, db *gorm.DB) (alice, bob *models.User) {
	alice = testutil.CreateUser(t, db, "alice")
	bob = testutil.CreateUser(t, db, "bob")
	for i, title := range []string{"Golang Tips", "Cooking Pasta", "Go Concurrency", "Garden Tour", "Mountain Bike"} {
		v := testutil.CreateVideo(t, db, alice.ID, title, true)
		require.NoError(t, db.Model(v).UpdateColumn("views", int64(i*10)).Error)
	}
	testutil.CreateVideo(t, db, alice.ID, "Secret Draft", false)
	testutil.CreateVideo(t, db, bob.ID, "Bob Vlog", true)
	return alice, bob
}

func TestVideoRepository_ListPublished(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()
	alice, _ := seedFeed(t, db)

	t.Run("pages concatenate to the full feed", func(t *testing.T) {
		seen := map[uint]bool{}
		for page := 1; page <= 3; page++ {
			result, err := repo.ListPublished(ctx, VideoListQuery{Page: page, Limit: 2, SortBy: "createdAt", Descending: true})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(result.Videos), 2)
			assert.Equal(t, int64(6), result.TotalCount)
			assert.Equal(t, 3, result.TotalPages)
			for _, item := range result.Videos {
				assert.False(t, seen[item.ID], "video %d repeated", item.ID)
				seen[item.ID] = true
				assert.True(t, item.IsPublished)
				assert.NotEmpty(t, item.Owner.Username)
			}
		}
		assert.Len(t, seen, 6)
	})

	t.Run("query is case insensitive on title and description", func(t *testing.T) {
		result, err := repo.ListPublished(ctx, VideoListQuery{Page: 1, Limit: 10, Query: "GO", SortBy: "title"})
		require.NoError(t, err)
		titles := []string{}
		for _, item := range result.Videos {
			titles = append(titles, item.Title)
		}
		assert.Equal(t, []string{"Go Concurrency", "Golang Tips"}, titles)
	})

	t.Run("wildcards in query are literal", func(t *testing.T) {
		result, err := repo.ListPublished(ctx, VideoListQuery{Page: 1, Limit: 10, Query: "%", SortBy: "title"})
		require.NoError(t, err)
		assert.Empty(t, result.Videos)
		assert.Equal(t, int64(0), result.TotalCount)
	})

	t.Run("owner filter and views ascending", func(t *testing.T) {
		result, err := repo.ListPublished(ctx, VideoListQuery{Page: 1, Limit: 10, OwnerID: alice.ID, SortBy: "views"})
		require.NoError(t, err)
		require.Len(t, result.Videos, 5)
		for i := 1; i < len(result.Videos); i++ {
			assert.LessOrEqual(t, result.Videos[i-1].Views, result.Videos[i].Views)
		}
		assert.Equal(t, "alice", result.Videos[0].Owner.Username)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		result, err := repo.ListPublished(ctx, VideoListQuery{Page: 50, Limit: 10, SortBy: "createdAt"})
		require.NoError(t, err)
		assert.Empty(t, result.Videos)
		assert.Equal(t, int64(6), result.TotalCount)
	})

	t.Run("unknown sort field", func(t *testing.T) {
		_, err := repo.ListPublished(ctx, VideoListQuery{Page: 1, Limit: 10, SortBy: "password"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})
}

func TestCommentRepository_ListByVideo(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	viewer := testutil.CreateUser(t, db, "viewer")
	video := testutil.CreateVideo(t, db, owner.ID, "clip", true)
	base := time.Now().Add(-time.Hour)
	first := testutil.CreateComment(t, db, video.ID, owner.ID, "first", base)
	second := testutil.CreateComment(t, db, video.ID, viewer.ID, "second", base.Add(time.Minute))
	testutil.CreateLike(t, db, viewer.ID, models.LikeTargetComment, first.ID)
	testutil.CreateLike(t, db, owner.ID, models.LikeTargetComment, first.ID)

	page, err := repo.ListByVideo(ctx, video.ID, viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, int64(2), page.TotalCount)

	assert.Equal(t, second.ID, page.Comments[0].ID)
	assert.True(t, page.Comments[0].IsOwner)
	assert.Equal(t, int64(0), page.Comments[0].LikeCount)
	assert.False(t, page.Comments[0].LikedByRequester)

	assert.Equal(t, first.ID, page.Comments[1].ID)
	assert.Equal(t, int64(2), page.Comments[1].LikeCount)
	assert.True(t, page.Comments[1].LikedByRequester)
	assert.False(t, page.Comments[1].IsOwner)
	assert.Equal(t, "owner", page.Comments[1].Owner.Username)

	anon, err := repo.ListByVideo(ctx, video.ID, 0, 1, 1)
	require.NoError(t, err)
	require.Len(t, anon.Comments, 1)
	assert.False(t, anon.Comments[0].LikedByRequester)
	assert.Equal(t, int64(2), anon.TotalCount)
}

func TestTweetRepository_ListByOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTweetRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	older := &models.Tweet{Content: "hello", OwnerID: author.ID}
	require.NoError(t, repo.Create(ctx, older))
	newer := &models.Tweet{Content: "world", OwnerID: author.ID}
	require.NoError(t, repo.Create(ctx, newer))
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetTweet, older.ID)
	testutil.CreateLike(t, db, author.ID, models.LikeTargetTweet, older.ID)

	feed, err := repo.ListByOwner(ctx, author, fan.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Tweets, 2)
	assert.Equal(t, int64(2), feed.TotalCount)
	assert.False(t, feed.TweetedBy.IsTweetOwner)
	assert.Equal(t, "author", feed.TweetedBy.Username)

	likes := map[uint]int64{}
	for _, tw := range feed.Tweets {
		likes[tw.ID] = tw.TotalLikes
	}
	assert.Equal(t, int64(2), likes[older.ID])
	assert.Equal(t, int64(0), likes[newer.ID])

	own, err := repo.ListByOwner(ctx, author, author.ID, 1, 20)
	require.NoError(t, err)
	assert.True(t, own.TweetedBy.IsTweetOwner)

	empty, err := repo.ListByOwner(ctx, fan, 0, 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, empty.Tweets)
	assert.Empty(t, empty.Tweets)
}

func TestLikeRepository_Toggle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "liker")
	video := testutil.CreateVideo(t, db, user.ID, "v", true)

	on, err := repo.Toggle(ctx, user.ID, models.LikeTargetVideo, video.ID)
	require.NoError(t, err)
	assert.True(t, on.Liked)
	require.NotNil(t, on.Like)
	assert.NotZero(t, on.Like.ID)

	count, err := repo.Count(ctx, models.LikeTargetVideo, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	off, err := repo.Toggle(ctx, user.ID, models.LikeTargetVideo, video.ID)
	require.NoError(t, err)
	assert.False(t, off.Liked)
	assert.Nil(t, off.Like)

	count, err = repo.Count(ctx, models.LikeTargetVideo, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Same id, different kind: independent rows.
	_, err = repo.Toggle(ctx, user.ID, models.LikeTargetVideo, video.ID)
	require.NoError(t, err)
	tweetLike, err := repo.Toggle(ctx, user.ID, models.LikeTargetTweet, video.ID)
	require.NoError(t, err)
	assert.True(t, tweetLike.Liked)
}

func TestLikeRepository_ListLikedVideos(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	public := testutil.CreateVideo(t, db, owner.ID, "public", true)
	hidden := testutil.CreateVideo(t, db, owner.ID, "hidden", false)
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetVideo, public.ID)
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetVideo, hidden.ID)
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetComment, public.ID)

	items, total, err := repo.ListLikedVideos(ctx, fan.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, public.ID, items[0].ID)
	assert.Equal(t, "owner", items[0].Owner.Username)
	assert.False(t, items[0].LikedAt.IsZero())
}

func TestSubscriptionRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")

	for _, sub := range []*models.User{a, b} {
		res, err := repo.Toggle(ctx, sub.ID, c.ID)
		require.NoError(t, err)
		assert.True(t, res.Subscribed)
	}

	list, err := repo.ListSubscribers(ctx, c.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.SubscribersCount)
	assert.Len(t, list.Subscribers, 1)

	channels, err := repo.ListSubscribedChannels(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), channels.ChannelsCount)
	require.Len(t, channels.Channels, 1)
	assert.Equal(t, "c", channels.Channels[0].Channel.Username)

	res, err := repo.Toggle(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, res.Subscribed)

	list, err = repo.ListSubscribers(ctx, c.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.SubscribersCount)
	assert.Equal(t, "b", list.Subscribers[0].Subscriber.Username)
}

func TestVideoRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	video := testutil.CreateVideo(t, db, owner.ID, "doomed", true)
	keep := testutil.CreateVideo(t, db, owner.ID, "keeper", true)
	comment := testutil.CreateComment(t, db, video.ID, fan.ID, "bye", time.Now())
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetVideo, video.ID)
	testutil.CreateLike(t, db, owner.ID, models.LikeTargetComment, comment.ID)
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetVideo, keep.ID)
	require.NoError(t, NewHistoryRepository(db).Record(ctx, fan.ID, video.ID))
	playlist := &models.Playlist{Name: "mix", OwnerID: fan.ID}
	require.NoError(t, db.Create(playlist).Error)
	require.NoError(t, NewPlaylistRepository(db).AddVideo(ctx, playlist.ID, video.ID))

	require.NoError(t, repo.Delete(ctx, video.ID))

	var n int64
	db.Model(&models.Like{}).Count(&n)
	assert.Equal(t, int64(1), n, "only the like on the other video survives")
	db.Model(&models.Comment{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.PlaylistVideo{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.WatchHistory{}).Count(&n)
	assert.Zero(t, n)

	err := repo.Delete(ctx, video.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestTweetAndCommentDeleteCascadeLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "u")
	tweet := &models.Tweet{Content: "hi", OwnerID: user.ID}
	require.NoError(t, db.Create(tweet).Error)
	video := testutil.CreateVideo(t, db, user.ID, "v", true)
	comment := testutil.CreateComment(t, db, video.ID, user.ID, "c", time.Now())
	testutil.CreateLike(t, db, user.ID, models.LikeTargetTweet, tweet.ID)
	testutil.CreateLike(t, db, user.ID, models.LikeTargetComment, comment.ID)

	require.NoError(t, NewTweetRepository(db).Delete(ctx, tweet.ID))
	require.NoError(t, NewCommentRepository(db).Delete(ctx, comment.ID))

	var n int64
	db.Model(&models.Like{}).Count(&n)
	assert.Zero(t, n)

	_, err := NewTweetRepository(db).GetByID(ctx, tweet.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPlaylistRepository_Entries(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "curator")
	other := testutil.CreateUser(t, db, "other")
	v1 := testutil.CreateVideo(t, db, owner.ID, "one", true)
	v2 := testutil.CreateVideo(t, db, other.ID, "two", false)
	v3 := testutil.CreateVideo(t, db, owner.ID, "three", true)

	playlist := &models.Playlist{Name: "favs", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, playlist))
	for _, v := range []*models.Video{v1, v2, v3} {
		require.NoError(t, repo.AddVideo(ctx, playlist.ID, v.ID))
	}

	err := repo.AddVideo(ctx, playlist.ID, v1.ID)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	detail, err := repo.Detail(ctx, playlist, owner.ID)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 2, "unpublished video of another user is hidden")
	assert.Equal(t, v1.ID, detail.Videos[0].ID)
	assert.Equal(t, v3.ID, detail.Videos[1].ID)
	assert.Equal(t, "curator", detail.Owner.Username)

	require.NoError(t, repo.RemoveVideo(ctx, playlist.ID, v1.ID))
	var positions []int
	require.NoError(t, db.Model(&models.PlaylistVideo{}).
		Where("playlist_id = ?", playlist.ID).
		Order("position").
		Pluck("position", &positions).Error)
	assert.Equal(t, []int{0, 1}, positions)

	err = repo.RemoveVideo(ctx, playlist.ID, v1.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	summaries, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].TotalVideos)

	require.NoError(t, repo.Delete(ctx, playlist.ID))
	var n int64
	db.Model(&models.PlaylistVideo{}).Count(&n)
	assert.Zero(t, n)
}

func TestHistoryRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "watcher")
	v1 := testutil.CreateVideo(t, db, user.ID, "one", true)
	v2 := testutil.CreateVideo(t, db, user.ID, "two", true)

	require.NoError(t, repo.Record(ctx, user.ID, v1.ID))
	require.NoError(t, repo.Record(ctx, user.ID, v2.ID))
	require.NoError(t, repo.Record(ctx, user.ID, v1.ID))

	items, total, err := repo.List(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, v1.ID, items[0].ID, "rewatch moves the video to the top")
}

func TestVideoRepository_ChannelStatsAndDashboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "creator")
	fan := testutil.CreateUser(t, db, "fan")
	v1 := testutil.CreateVideo(t, db, owner.ID, "one", true)
	v2 := testutil.CreateVideo(t, db, owner.ID, "two", false)
	require.NoError(t, repo.IncrementViews(ctx, v1.ID))
	require.NoError(t, repo.IncrementViews(ctx, v1.ID))
	require.NoError(t, repo.IncrementViews(ctx, v2.ID))
	testutil.CreateLike(t, db, fan.ID, models.LikeTargetVideo, v1.ID)
	testutil.CreateComment(t, db, v1.ID, fan.ID, "nice", time.Now())
	testutil.Subscribe(t, db, fan.ID, owner.ID)

	stats, err := repo.ChannelStats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelStats{
		TotalViews:       3,
		TotalSubscribers: 1,
		TotalVideos:      2,
		TotalLikes:       1,
		TotalComments:    1,
	}, *stats)

	page, err := repo.ListByOwner(ctx, owner.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	counts := map[uint]models.ChannelVideo{}
	for _, row := range page.Videos {
		counts[row.ID] = row
	}
	assert.Equal(t, int64(1), counts[v1.ID].LikeCount)
	assert.Equal(t, int64(1), counts[v1.ID].CommentCount)
	assert.Equal(t, int64(0), counts[v2.ID].LikeCount)

	detail, err := repo.Detail(ctx, v1, fan.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.True(t, detail.IsSubscribed)
	assert.Equal(t, int64(1), detail.SubscribersCount)
	assert.Equal(t, "creator", detail.Owner.Username)
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.Subscribe(t, db, bob.ID, alice.ID)

	dup := &models.User{Username: "alice", Email: "other@example.com", FullName: "x", Avatar: "a", Password: "p"}
	err := repo.Create(ctx, dup)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	found, err := repo.FindByLogin(ctx, "", "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, alice.ID, found.ID)

	found, err = repo.FindByLogin(ctx, "nobody@example.com", "")
	require.NoError(t, err)
	assert.Nil(t, found)

	profile, err := repo.ChannelProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.Equal(t, int64(0), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	_, err = repo.ChannelProfile(ctx, "ghost", 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, "token-1"))
	reloaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", reloaded.RefreshToken)
}

func TestVideoRepository_UpdateKeepsConcurrentViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	created := testutil.CreateVideo(t, db, owner.ID, "before", true)
	require.NoError(t, db.Model(created).UpdateColumn("views", int64(5)).Error)

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), loaded.Views)

	// A view lands while the edit is in flight.
	require.NoError(t, repo.IncrementViews(ctx, created.ID))

	loaded.Title = "after"
	loaded.IsPublished = false
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reloaded.Views)
	assert.Equal(t, "after", reloaded.Title)
	assert.False(t, reloaded.IsPublished)
}

func TestUserRepository_UpdateKeepsRefreshToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, "token-1"))

	loaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)

	// Logout clears the token after the profile was loaded.
	require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, ""))

	loaded.FullName = "Alice Liddell"
	loaded.CoverImage = ""
	require.NoError(t, repo.Update(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.RefreshToken)
	assert.Equal(t, "Alice Liddell", reloaded.FullName)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	require.NoError(t, repo.SetRefreshToken(ctx, alice.ID, "token-1"))

	require.NoError(t, repo.RotateRefreshToken(ctx, alice.ID, "token-1", "token-2"))
	err := repo.RotateRefreshToken(ctx, alice.ID, "token-1", "token-3")
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
	err = repo.RotateRefreshToken(ctx, alice.ID, "", "token-4")
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)

	reloaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-2", reloaded.RefreshToken)
}

func TestPlaylistRepository_AddVideoLocksPlaylist(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPlaylistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "playlists" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.AddVideo(context.Background(), 4, 9)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylistRepository_ConcurrentAddsGetDistinctPositions(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "curator")
	playlist := &models.Playlist{Name: "mix", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, playlist))

	const n = 8
	videos := make([]*models.Video, n)
	for i := range videos {
		videos[i] = testutil.CreateVideo(t, db, owner.ID, "clip", true)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, v := range videos {
		wg.Add(1)
		go func(videoID uint) {
			defer wg.Done()
			errs <- repo.AddVideo(ctx, playlist.ID, videoID)
		}(v.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var positions []int
	require.NoError(t, db.Model(&models.PlaylistVideo{}).
		Where("playlist_id = ?", playlist.ID).
		Order("position").
		Pluck("position", &positions).Error)
	expected := make([]int, n)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, positions)

	err := repo.AddVideo(ctx, 9999, videos[0].ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestLikeRepository_ConcurrentTogglesKeepOneRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	video := testutil.CreateVideo(t, db, owner.ID, "hit", true)

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		added   int
		removed int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := repo.Toggle(ctx, fan.ID, models.LikeTargetVideo, video.ID)
			if err != nil {
				assert.True(t, models.HasCode(err, models.CodeConflict), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Liked {
				added++
			} else {
				removed++
			}
		}()
	}
	wg.Wait()

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("liked_by_id = ? AND target_type = ? AND target_id = ?", fan.ID, models.LikeTargetVideo, video.ID).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))
	assert.Equal(t, int64(added-removed), rows)
}
