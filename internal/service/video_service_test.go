package service

import (
	"context"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishTestVideo(t *testing.T, env *testEnv, ownerID uint, title string) *models.Video {
	t.Helper()
	video, err := env.videos.PublishVideo(context.Background(), PublishVideoInput{
		OwnerID:       ownerID,
		Title:         title,
		Description:   "About " + title,
		VideoPath:     writeTempFile(t, "clip.mp4", []byte("not really an mp4")),
		ThumbnailPath: writeTempPNG(t, "thumb.png"),
	})
	require.NoError(t, err)
	return video
}

func TestVideoService_PublishVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")

	clip := writeTempFile(t, "clip.mp4", []byte("frames"))
	thumb := writeTempPNG(t, "thumb.png")
	video, err := env.videos.PublishVideo(ctx, PublishVideoInput{
		OwnerID: owner.ID, Title: " Launch ", Description: "Day one", VideoPath: clip, ThumbnailPath: thumb,
	})
	require.NoError(t, err)

	assert.Equal(t, "Launch", video.Title)
	assert.False(t, video.IsPublished)
	assert.True(t, env.store.Has(video.VideoKey))
	assert.True(t, env.store.Has(video.ThumbnailKey))
	assert.Contains(t, video.VideoFile, ".mp4")
	assert.False(t, fileExists(clip))
	assert.False(t, fileExists(thumb))

	t.Run("missing title discards temp files", func(t *testing.T) {
		clip := writeTempFile(t, "clip.mp4", []byte("frames"))
		thumb := writeTempPNG(t, "thumb.png")
		_, err := env.videos.PublishVideo(ctx, PublishVideoInput{
			OwnerID: owner.ID, Description: "x", VideoPath: clip, ThumbnailPath: thumb,
		})
		assertValidationError(t, err)
		assert.False(t, fileExists(clip))
		assert.False(t, fileExists(thumb))
	})

	t.Run("missing thumbnail", func(t *testing.T) {
		_, err := env.videos.PublishVideo(ctx, PublishVideoInput{
			OwnerID: owner.ID, Title: "t", Description: "d", VideoPath: writeTempFile(t, "clip.mp4", []byte("x")),
		})
		assertValidationError(t, err)
	})

	t.Run("thumbnail that is not an image", func(t *testing.T) {
		before := env.store.Len()
		_, err := env.videos.PublishVideo(ctx, PublishVideoInput{
			OwnerID: owner.ID, Title: "t", Description: "d",
			VideoPath:     writeTempFile(t, "clip.mp4", []byte("x")),
			ThumbnailPath: writeTempFile(t, "thumb.png", []byte("garbage")),
		})
		assertValidationError(t, err)
		assert.Equal(t, before, env.store.Len())
	})
}

func TestVideoService_VisibilityAndViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	viewer := testutil.CreateUser(t, env.db, "viewer")
	video := publishTestVideo(t, env, owner.ID, "draft")

	_, err := env.videos.GetVideo(ctx, video.ID, viewer.ID)
	assertNotFoundError(t, err)
	_, err = env.videos.GetVideo(ctx, video.ID, 0)
	assertNotFoundError(t, err)

	detail, err := env.videos.GetVideo(ctx, video.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Views)
	assert.Equal(t, owner.Username, detail.Owner.Username)

	_, err = env.videos.TogglePublish(ctx, viewer.ID, video.ID)
	assertForbiddenError(t, err)
	toggled, err := env.videos.TogglePublish(ctx, owner.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublished)

	detail, err = env.videos.GetVideo(ctx, video.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Views)
	assert.False(t, detail.IsLiked)

	_, err = env.videos.GetVideo(ctx, video.ID, 0)
	require.NoError(t, err)

	history, err := env.users.WatchHistory(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), history.TotalCount)
	require.Len(t, history.Videos, 1)
	assert.Equal(t, video.ID, history.Videos[0].ID)

	var stored models.Video
	require.NoError(t, env.db.First(&stored, video.ID).Error)
	assert.Equal(t, int64(3), stored.Views)
}

func TestVideoService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	other := testutil.CreateUser(t, env.db, "other")
	video := publishTestVideo(t, env, owner.ID, "original")
	oldThumb := video.ThumbnailKey

	newTitle := "hijacked"
	_, err := env.videos.UpdateVideo(ctx, UpdateVideoInput{UserID: other.ID, VideoID: video.ID, Title: &newTitle})
	assertForbiddenError(t, err)

	var stored models.Video
	require.NoError(t, env.db.First(&stored, video.ID).Error)
	assert.Equal(t, "original", stored.Title)

	renamed := "renamed"
	updated, err := env.videos.UpdateVideo(ctx, UpdateVideoInput{
		UserID: owner.ID, VideoID: video.ID, Title: &renamed, ThumbnailPath: writeTempPNG(t, "new.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "About original", updated.Description)
	assert.NotEqual(t, oldThumb, updated.ThumbnailKey)
	assert.False(t, env.store.Has(oldThumb))
	assert.True(t, env.store.Has(updated.ThumbnailKey))

	empty := " "
	_, err = env.videos.UpdateVideo(ctx, UpdateVideoInput{UserID: owner.ID, VideoID: video.ID, Description: &empty})
	assertValidationError(t, err)

	_, err = env.videos.DeleteVideo(ctx, other.ID, video.ID)
	assertForbiddenError(t, err)

	deleted, err := env.videos.DeleteVideo(ctx, owner.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, deleted.ID)
	assert.False(t, env.store.Has(updated.VideoKey))
	assert.False(t, env.store.Has(updated.ThumbnailKey))

	_, err = env.videos.GetVideo(ctx, video.ID, owner.ID)
	assertNotFoundError(t, err)
}

func TestVideoService_ListVideos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	testutil.CreateVideo(t, env.db, owner.ID, "bravo", true)
	testutil.CreateVideo(t, env.db, owner.ID, "alpha", true)
	testutil.CreateVideo(t, env.db, owner.ID, "charlie", false)

	page, err := env.videos.ListVideos(ctx, ListVideosInput{Page: 1, Limit: 10, SortBy: "title", SortType: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	require.Len(t, page.Videos, 2)
	assert.Equal(t, "alpha", page.Videos[0].Title)
	assert.Equal(t, owner.Username, page.Videos[0].Owner.Username)

	page, err = env.videos.ListVideos(ctx, ListVideosInput{Page: 1, Limit: 10, SortBy: "title", SortType: "-1"})
	require.NoError(t, err)
	assert.Equal(t, "bravo", page.Videos[0].Title)

	_, err = env.videos.ListVideos(ctx, ListVideosInput{Page: 1, Limit: 10, SortBy: "password"})
	assertValidationError(t, err)
	_, err = env.videos.ListVideos(ctx, ListVideosInput{Page: 1, Limit: 10, SortType: "sideways"})
	assertValidationError(t, err)
}
