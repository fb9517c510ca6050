// Package storage uploads media to object storage and normalizes it on the way.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind names the role of an uploaded asset.
type Kind string

const (
	KindVideo     Kind = "video"
	KindThumbnail Kind = "thumbnail"
	KindAvatar    Kind = "avatar"
	KindCover     Kind = "cover"
)

// IsImage reports whether the asset is normalized as an image.
func (k Kind) IsImage() bool {
	return k == KindThumbnail || k == KindAvatar || k == KindCover
}

// Upload describes a stored object.
type Upload struct {
	URL      string
	Key      string
	Size     int64
	Duration float64
}

// Uploader stores local files and removes stored objects. Upload always
// deletes localPath, whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath string, kind Kind) (*Upload, error)
	Delete(ctx context.Context, key string) error
}

func objectKey(kind Kind, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	if kind.IsImage() {
		ext = ".webp"
	}
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%ss/%s%s", kind, uuid.NewString(), ext)
}

func contentTypeFor(kind Kind, key string) string {
	if kind.IsImage() {
		return "image/webp"
	}
	switch filepath.Ext(key) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
