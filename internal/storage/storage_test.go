package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidtube/internal/models"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

type fixedProber struct {
	d   float64
	err error
}

func (p fixedProber) Duration(context.Context, string) (float64, error) { return p.d, p.err }

func TestNormalizeImage_ScalesDownToKindBounds(t *testing.T) {
	t.Parallel()

	out, err := NormalizeImage(bytes.NewReader(pngBytes(t, 2000, 1000)), KindAvatar)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 256, cfg.Height)
}

func TestNormalizeImage_KeepsSmallImages(t *testing.T) {
	t.Parallel()

	out, err := NormalizeImage(bytes.NewReader(pngBytes(t, 64, 48)), KindThumbnail)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestNormalizeImage_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NormalizeImage(strings.NewReader("definitely not an image"), KindCover)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestParseProbeDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		report  string
		want    float64
		wantErr bool
	}{
		{"container duration", `{"format":{"duration":"12.480000"}}`, 12.48, false},
		{"stream fallback", `{"format":{},"streams":[{"codec_type":"audio","duration":"3.0"},{"codec_type":"video","duration":"9.5"}]}`, 9.5, false},
		{"missing", `{"format":{},"streams":[]}`, 0, true},
		{"not json", `ffprobe: error`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration(tt.report)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(objectKey(KindVideo, "/tmp/a.MP4"), "videos/"))
	assert.True(t, strings.HasSuffix(objectKey(KindVideo, "/tmp/a.MP4"), ".mp4"))
	assert.True(t, strings.HasSuffix(objectKey(KindAvatar, "/tmp/a.png"), ".webp"))
	assert.NotEqual(t, objectKey(KindCover, "x.png"), objectKey(KindCover, "x.png"))
	assert.Equal(t, "video/mp4", contentTypeFor(KindVideo, "videos/x.mp4"))
	assert.Equal(t, "image/webp", contentTypeFor(KindThumbnail, "thumbnails/x.webp"))
}

func TestMemoryStorage_UploadAndDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage("http://cdn.test")
	store.Prober = fixedProber{d: 42.5}
	ctx := context.Background()

	videoPath := writeTemp(t, "clip.mp4", []byte("fake video bytes"))
	video, err := store.Upload(ctx, videoPath, KindVideo)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, video.Duration, 1e-9)
	assert.Equal(t, "http://cdn.test/"+video.Key, video.URL)
	_, statErr := os.Stat(videoPath)
	assert.True(t, os.IsNotExist(statErr), "temp file is removed after upload")

	thumbPath := writeTemp(t, "thumb.png", pngBytes(t, 10, 10))
	thumb, err := store.Upload(ctx, thumbPath, KindThumbnail)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(thumb.Key, ".webp"))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.Delete(ctx, video.Key))
	assert.False(t, store.Has(video.Key))
	assert.True(t, store.Has(thumb.Key))
}

func TestMemoryStorage_BadImageStillRemovesTemp(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage("http://cdn.test")
	store.Prober = fixedProber{err: errors.New("no ffprobe")}
	path := writeTemp(t, "avatar.png", []byte("nope"))

	_, err := store.Upload(context.Background(), path, KindAvatar)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Zero(t, store.Len())
}
