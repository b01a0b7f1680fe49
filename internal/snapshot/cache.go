package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/campus-floormap/backend/internal/models"
)

// Cached is the on-disk snapshot payload, serialized with msgpack so the
// server can come up with data when the campus API is unreachable.
type Cached struct {
	Center      models.Center       `msgpack:"center"`
	Allocations []models.Allocation `msgpack:"allocations"`
	FetchedAt   int64               `msgpack:"fetchedAt"`
}

// SaveCache writes the payload atomically (temp file then rename).
func SaveCache(path string, c *Cached) error {
	data, err := msgpack.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding snapshot cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot cache: %w", err)
	}
	return nil
}

// LoadCache reads a previously saved payload. A missing file is not an
// error; it returns (nil, nil).
func LoadCache(path string) (*Cached, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot cache: %w", err)
	}

	var c Cached
	if err := msgpack.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding snapshot cache: %w", err)
	}
	return &c, nil
}
