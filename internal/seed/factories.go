// Package seed builds demo channels, videos and engagement for local
// development. It is not used by the API server.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"vidtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities with fake but plausible content.
// It does not touch the database.
type Factory struct {
	faker   *gofakeit.Faker
	rng     *rand.Rand
	maxDays int
	now     time.Time
}

// NewFactory returns a Factory. The same seed yields the same entities.
func NewFactory(seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		faker:   gofakeit.New(seed),
		rng:     rand.New(rand.NewSource(seed)),
		maxDays: maxDays,
		now:     time.Now(),
	}
}

// BuildUser returns a channel whose username and email are unique by index.
func (f *Factory) BuildUser(i int, passwordHash string) *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := fmt.Sprintf("%s_%s%d", slug(first), slug(last), i)
	created := f.pastTime()
	return &models.User{
		Username:   username,
		Email:      username + "@vidtube.test",
		FullName:   first + " " + last,
		Avatar:     fmt.Sprintf("https://picsum.photos/seed/avatar-%s/256/256", username),
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/cover-%s/1280/320", username),
		Password:   passwordHash,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// BuildVideo returns a video for owner; roughly one in five stays unpublished.
func (f *Factory) BuildVideo(owner *models.User) *models.Video {
	id := f.faker.UUID()
	created := f.pastTimeAfter(owner.CreatedAt)
	return &models.Video{
		Title:       truncateRunes(strings.TrimSuffix(f.faker.Sentence(f.rng.Intn(6)+3), "."), 200),
		Description: f.faker.Paragraph(1, 3, 12, "\n"),
		VideoFile:   fmt.Sprintf("https://cdn.vidtube.test/videos/%s.mp4", id),
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/1280/720", id),
		Duration:    float64(f.rng.Intn(3600-30) + 30),
		Views:       int64(f.rng.Intn(50000)),
		OwnerID:     owner.ID,
		IsPublished: f.rng.Intn(5) != 0,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// BuildComment returns a comment by author on video.
func (f *Factory) BuildComment(video *models.Video, author *models.User) *models.Comment {
	created := f.pastTimeAfter(video.CreatedAt)
	return &models.Comment{
		Content:   f.faker.Sentence(f.rng.Intn(15) + 3),
		VideoID:   video.ID,
		OwnerID:   author.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// BuildTweet returns a tweet that always fits the length limit.
func (f *Factory) BuildTweet(author *models.User) *models.Tweet {
	created := f.pastTimeAfter(author.CreatedAt)
	return &models.Tweet{
		Content:   truncateRunes(f.faker.HipsterSentence(f.rng.Intn(20)+5), models.MaxTweetLength),
		OwnerID:   author.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// BuildPlaylist returns an empty playlist for owner.
func (f *Factory) BuildPlaylist(owner *models.User) *models.Playlist {
	created := f.pastTimeAfter(owner.CreatedAt)
	return &models.Playlist{
		Name:        truncateRunes(capitalize(f.faker.HackerAdjective()+" "+f.faker.HackerNoun()), 150),
		Description: f.faker.Sentence(8),
		OwnerID:     owner.ID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// Pick returns n distinct indexes in [0, size).
func (f *Factory) Pick(size, n int) []int {
	if n > size {
		n = size
	}
	return f.rng.Perm(size)[:n]
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Int63n(int64(f.maxDays) * int64(24*time.Hour)))
	return f.now.Add(-back).Truncate(time.Second)
}

// pastTimeAfter returns a time between floor and now.
func (f *Factory) pastTimeAfter(floor time.Time) time.Time {
	span := f.now.Sub(floor)
	if span <= 0 {
		return f.now.Truncate(time.Second)
	}
	return floor.Add(time.Duration(f.rng.Int63n(int64(span)))).Truncate(time.Second)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
