package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"plainclass/internal/transform"
	"plainclass/internal/version"
)

// Current schema version - increment when CachedUnit format changes
const cacheSchemaVersion uint16 = 1

// Digest is the cache key of one unit.
type Digest [32]byte

// DiskCache keeps the outcome of units that transformed without failures,
// keyed by their content and the options that shape the output.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is what a cache entry stores.
type CachedUnit struct {
	Schema  uint16
	Output  []byte
	Changed bool
	Classes []string
}

// OpenDiskCache opens the cache at dir, or under the user cache directory when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "plainclass")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Key hashes the unit bytes together with the tool version and options.
func Key(content []byte, opts transform.Options) Digest {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "plainclass %s schema=%d match_args=%t\x00", version.Version, cacheSchemaVersion, !opts.NoMatchArgs)
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первому байту, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "units", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry.
func (c *DiskCache) Put(key Digest, unit *CachedUnit) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	unit.Schema = cacheSchemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(unit); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads an entry; ok is false for a miss or an entry of another schema.
func (c *DiskCache) Get(key Digest) (*CachedUnit, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var unit CachedUnit
	if err := msgpack.NewDecoder(f).Decode(&unit); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if unit.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &unit, true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func cachedResult(path string, unit *CachedUnit) *transform.Result {
	return &transform.Result{
		Unit:    path,
		Output:  unit.Output,
		Changed: unit.Changed,
		Classes: unit.Classes,
	}
}
