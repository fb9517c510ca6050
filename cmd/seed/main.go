// Command seed fills the database with demo channels and engagement.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of channels to create")
	videos := flag.Int("videos", defaults.VideosPerUser, "Videos per channel")
	comments := flag.Int("comments", defaults.CommentsPerVideo, "Comments per video")
	tweets := flag.Int("tweets", defaults.TweetsPerUser, "Tweets per channel")
	playlists := flag.Int("playlists", defaults.PlaylistsPerUser, "Playlists per channel")
	randSeed := flag.Int64("seed", defaults.RandSeed, "Random seed for reproducible data")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s := seed.NewSeeder(db, seed.Options{
		Users:            *users,
		VideosPerUser:    *videos,
		CommentsPerVideo: *comments,
		TweetsPerUser:    *tweets,
		PlaylistsPerUser: *playlists,
		MaxDays:          defaults.MaxDays,
		RandSeed:         *randSeed,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d videos, %d comments, %d tweets, %d likes, %d subscriptions, %d playlists",
		summary.Users, summary.Videos, summary.Comments, summary.Tweets,
		summary.Likes, summary.Subscriptions, summary.Playlists)
	log.Printf("All seeded users share the password: %s", seed.DefaultPassword)
}
