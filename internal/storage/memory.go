package storage

import (
	"context"
	"os"
	"sync"
)

// MemoryStorage keeps objects in process memory. It backs tests and local
// runs without an object store, and applies the same image normalization
// as MinIOStorage.
type MemoryStorage struct {
	BaseURL string
	Prober  Prober

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage serving URLs under baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{BaseURL: baseURL, objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(ctx context.Context, localPath string, kind Kind) (upload *Upload, err error) {
	defer removeTemp(localPath)
	defer func() { recordUpload(kind, upload, err) }()

	var data []byte
	if kind.IsImage() {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, err
		}
		data, err = NormalizeImage(f, kind)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	} else {
		data, err = os.ReadFile(localPath)
		if err != nil {
			return nil, err
		}
	}

	key := objectKey(kind, localPath)
	upload = &Upload{Key: key, URL: s.BaseURL + "/" + key, Size: int64(len(data))}
	if kind == KindVideo && s.Prober != nil {
		if d, err := s.Prober.Duration(ctx, localPath); err == nil {
			upload.Duration = d
		}
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return upload, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key is stored.
func (s *MemoryStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
