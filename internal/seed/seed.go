package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vidtube/internal/auth"
	"vidtube/internal/database"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Password-123"

// Options sizes a seeding run.
type Options struct {
	Users            int
	VideosPerUser    int
	CommentsPerVideo int
	TweetsPerUser    int
	PlaylistsPerUser int
	MaxDays          int
	RandSeed         int64
}

// DefaultOptions is a small but well-connected demo dataset.
func DefaultOptions() Options {
	return Options{
		Users:            20,
		VideosPerUser:    4,
		CommentsPerVideo: 5,
		TweetsPerUser:    3,
		PlaylistsPerUser: 1,
		MaxDays:          90,
		RandSeed:         time.Now().UnixNano(),
	}
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Videos        int
	Comments      int
	Tweets        int
	Likes         int
	Subscriptions int
	Playlists     int
}

// Seeder writes Factory output to the database.
type Seeder struct {
	db        *gorm.DB
	opts      Options
	factory   *Factory
	playlists repository.PlaylistRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:        db,
		opts:      opts,
		factory:   NewFactory(opts.RandSeed, opts.MaxDays),
		playlists: repository.NewPlaylistRepository(db),
	}
}

// ClearAll deletes every row from every persistent table.
func (s *Seeder) ClearAll(ctx context.Context) error {
	all := database.PersistentModels()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
				return fmt.Errorf("clear %T: %w", all[i], err)
			}
		}
		return nil
	})
}

// Run creates users and their content, then cross-links them with
// comments, likes, subscriptions and playlists.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Users < 1 {
		return nil, fmt.Errorf("seed needs at least one user")
	}
	sum := &Summary{}
	db := s.db.WithContext(ctx)

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		users = append(users, s.factory.BuildUser(i+1, hash))
	}
	if err := db.CreateInBatches(users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	sum.Users = len(users)

	var videos []*models.Video
	for _, u := range users {
		for i := 0; i < s.opts.VideosPerUser; i++ {
			videos = append(videos, s.factory.BuildVideo(u))
		}
	}
	if len(videos) > 0 {
		if err := db.CreateInBatches(videos, 100).Error; err != nil {
			return nil, fmt.Errorf("create videos: %w", err)
		}
	}
	sum.Videos = len(videos)

	var comments []*models.Comment
	for _, v := range videos {
		for _, idx := range s.factory.Pick(len(users), s.opts.CommentsPerVideo) {
			comments = append(comments, s.factory.BuildComment(v, users[idx]))
		}
	}
	if len(comments) > 0 {
		if err := db.CreateInBatches(comments, 200).Error; err != nil {
			return nil, fmt.Errorf("create comments: %w", err)
		}
	}
	sum.Comments = len(comments)

	var tweets []*models.Tweet
	for _, u := range users {
		for i := 0; i < s.opts.TweetsPerUser; i++ {
			tweets = append(tweets, s.factory.BuildTweet(u))
		}
	}
	if len(tweets) > 0 {
		if err := db.CreateInBatches(tweets, 200).Error; err != nil {
			return nil, fmt.Errorf("create tweets: %w", err)
		}
	}
	sum.Tweets = len(tweets)

	if sum.Likes, err = s.seedLikes(db, users, videos, comments, tweets); err != nil {
		return nil, err
	}
	if sum.Subscriptions, err = s.seedSubscriptions(db, users); err != nil {
		return nil, err
	}
	if sum.Playlists, err = s.seedPlaylists(ctx, db, users, videos); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("videos", sum.Videos),
		slog.Int("comments", sum.Comments),
		slog.Int("tweets", sum.Tweets),
		slog.Int("likes", sum.Likes),
		slog.Int("subscriptions", sum.Subscriptions),
		slog.Int("playlists", sum.Playlists),
	)
	return sum, nil
}

func (s *Seeder) seedLikes(db *gorm.DB, users []*models.User, videos []*models.Video, comments []*models.Comment, tweets []*models.Tweet) (int, error) {
	var likes []*models.Like
	for _, u := range users {
		for _, idx := range s.factory.Pick(len(videos), len(videos)/3) {
			if videos[idx].IsPublished {
				likes = append(likes, &models.Like{LikedByID: u.ID, TargetType: models.LikeTargetVideo, TargetID: videos[idx].ID})
			}
		}
		for _, idx := range s.factory.Pick(len(comments), len(comments)/10) {
			likes = append(likes, &models.Like{LikedByID: u.ID, TargetType: models.LikeTargetComment, TargetID: comments[idx].ID})
		}
		for _, idx := range s.factory.Pick(len(tweets), len(tweets)/4) {
			likes = append(likes, &models.Like{LikedByID: u.ID, TargetType: models.LikeTargetTweet, TargetID: tweets[idx].ID})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(likes, 200).Error; err != nil {
		return 0, fmt.Errorf("create likes: %w", err)
	}
	return len(likes), nil
}

func (s *Seeder) seedSubscriptions(db *gorm.DB, users []*models.User) (int, error) {
	var subs []*models.Subscription
	for _, u := range users {
		for _, idx := range s.factory.Pick(len(users), len(users)/2) {
			if users[idx].ID == u.ID {
				continue
			}
			subs = append(subs, &models.Subscription{SubscriberID: u.ID, ChannelID: users[idx].ID})
		}
	}
	if len(subs) == 0 {
		return 0, nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(subs, 200).Error; err != nil {
		return 0, fmt.Errorf("create subscriptions: %w", err)
	}
	return len(subs), nil
}

// seedPlaylists goes through the repository so entry positions stay dense.
func (s *Seeder) seedPlaylists(ctx context.Context, db *gorm.DB, users []*models.User, videos []*models.Video) (int, error) {
	var published []*models.Video
	for _, v := range videos {
		if v.IsPublished {
			published = append(published, v)
		}
	}

	count := 0
	for _, u := range users {
		for i := 0; i < s.opts.PlaylistsPerUser; i++ {
			playlist := s.factory.BuildPlaylist(u)
			if err := db.Create(playlist).Error; err != nil {
				return count, fmt.Errorf("create playlist: %w", err)
			}
			count++
			for _, idx := range s.factory.Pick(len(published), 5) {
				if err := s.playlists.AddVideo(ctx, playlist.ID, published[idx].ID); err != nil {
					return count, fmt.Errorf("fill playlist %d: %w", playlist.ID, err)
				}
			}
		}
	}
	return count, nil
}
