package backend

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
)

const cacheCleanupInterval = 15 * time.Minute

// Media is a loaded frame image
type Media struct {
	Path     string
	Data     []byte
	MimeType string
}

// DataURL encodes the image as a base64 data: URL
func (m *Media) DataURL() string {
	return "data:" + m.MimeType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// MediaStore loads frame images once and serves them to every backend
// queried for the same pair.
type MediaStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMediaStore creates a store keeping images for ttl
func NewMediaStore(ttl time.Duration) *MediaStore {
	return &MediaStore{
		cache: cache.New(ttl, cacheCleanupInterval),
		ttl:   ttl,
	}
}

// Load returns the image at path, reading it from disk on a cache miss
func (s *MediaStore) Load(path string) (*Media, error) {
	if cached, ok := s.cache.Get(path); ok {
		return cached.(*Media), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media '%s': %w", path, err)
	}

	m := &Media{
		Path:     path,
		Data:     data,
		MimeType: detectMimeType(path, data),
	}
	s.cache.Set(path, m, s.ttl)
	return m, nil
}

// LoadAll loads every path in order
func (s *MediaStore) LoadAll(paths []string) ([]*Media, error) {
	media := make([]*Media, 0, len(paths))
	for _, p := range paths {
		m, err := s.Load(p)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, nil
}

func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
