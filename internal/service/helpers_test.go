package service

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidtube/internal/auth"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeNotFound)
}

// writeTempFile creates a file that stands in for a multipart upload.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeTempPNG(t *testing.T, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for x := 0; x < 64; x++ {
		img.Set(x, x%36, color.RGBA{R: 200, A: 255})
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type publishedEvent struct {
	RecipientID uint
	ActorID     uint
	Type        string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishActivity(_ context.Context, recipientID, actorID uint, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{RecipientID: recipientID, ActorID: actorID, Type: eventType})
	return p.err
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// testEnv wires every service against one SQLite database and in-memory storage.
type testEnv struct {
	db    *gorm.DB
	store *storage.MemoryStorage
	pub   *recordingPublisher

	auth          *AuthService
	users         *UserService
	videos        *VideoService
	comments      *CommentService
	tweets        *TweetService
	likes         *LikeService
	subscriptions *SubscriptionService
	playlists     *PlaylistService
	dashboard     *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := storage.NewMemoryStorage("https://cdn.test")
	pub := &recordingPublisher{}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "access-secret-for-tests-only-0123456789",
		RefreshSecret: "refresh-secret-for-tests-only-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}, nil)

	return &testEnv{
		db:            db,
		store:         store,
		pub:           pub,
		auth:          NewAuthService(userRepo, tokens, store),
		users:         NewUserService(userRepo, historyRepo, store),
		videos:        NewVideoService(videoRepo, historyRepo, store),
		comments:      NewCommentService(commentRepo, videoRepo, pub),
		tweets:        NewTweetService(tweetRepo, userRepo),
		likes:         NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo, pub),
		subscriptions: NewSubscriptionService(subRepo, userRepo, pub),
		playlists:     NewPlaylistService(playlistRepo, videoRepo, userRepo),
		dashboard:     NewDashboardService(videoRepo),
	}
}
