package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hammamikhairi/saathi/internal/logger"
)

// DefaultCacheEntries bounds the in-memory tier.
const DefaultCacheEntries = 256

// AudioCache is a two-tier cache (bounded in-memory LRU + filesystem) for
// synthesized audio. The key is sha256(voice + ":" + text), so the same
// sentence in two voices is stored twice.
//
// Disk behaviour is controlled by diskWrite:
//
//	diskWrite=true  -> reads from mem, then disk; writes to both.
//	diskWrite=false -> reads from mem, then disk; writes to mem only.
type AudioCache struct {
	mem       *lru.Cache[string, []byte]
	log       *logger.Logger
	cacheDir  string // empty = no disk layer
	diskWrite bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewAudioCache creates an audio cache holding up to entries items in
// memory. If cacheDir is empty the disk layer is disabled.
func NewAudioCache(entries int, cacheDir string, diskWrite bool, log *logger.Logger) *AudioCache {
	if entries <= 0 {
		entries = DefaultCacheEntries
	}
	mem, err := lru.New[string, []byte](entries)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	c := &AudioCache{
		mem:       mem,
		log:       log,
		cacheDir:  cacheDir,
		diskWrite: diskWrite,
	}

	if cacheDir != "" && diskWrite {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("cache: failed to create cache dir %s: %v", cacheDir, err)
		}
	}
	return c
}

// Get returns cached audio for text spoken in voice.
func (c *AudioCache) Get(voice, text string) ([]byte, bool) {
	key := hashKey(voice, text)

	if data, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		c.log.Debug("cache hit (mem): %s (%d bytes)", truncate(text, 40), len(data))
		return data, true
	}

	if c.cacheDir != "" {
		if data, ok := c.readDisk(key); ok {
			c.mem.Add(key, data)
			c.hits.Add(1)
			c.log.Debug("cache hit (disk): %s (%d bytes)", truncate(text, 40), len(data))
			return data, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores audio for text spoken in voice.
func (c *AudioCache) Put(voice, text string, audio []byte) {
	key := hashKey(voice, text)
	if evicted := c.mem.Add(key, audio); evicted {
		c.log.Debug("cache: evicted oldest entry")
	}
	c.log.Debug("cache store (mem): %s (%d bytes, %d entries)", truncate(text, 40), len(audio), c.mem.Len())

	if c.cacheDir != "" && c.diskWrite {
		c.writeDisk(key, audio)
	}
}

// Has reports whether audio is cached in memory or on disk.
func (c *AudioCache) Has(voice, text string) bool {
	key := hashKey(voice, text)
	if c.mem.Contains(key) {
		return true
	}
	if c.cacheDir != "" {
		_, err := os.Stat(c.diskPath(key))
		return err == nil
	}
	return false
}

// Len returns the number of in-memory entries.
func (c *AudioCache) Len() int { return c.mem.Len() }

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear empties the memory tier. Files on disk are kept.
func (c *AudioCache) Clear() {
	c.mem.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.log.Debug("cache cleared (mem)")
}

func hashKey(voice, text string) string {
	h := sha256.Sum256([]byte(voice + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *AudioCache) diskPath(key string) string {
	return filepath.Join(c.cacheDir, key+".wav")
}

func (c *AudioCache) readDisk(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *AudioCache) writeDisk(key string, audio []byte) {
	path := c.diskPath(key)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		c.log.Error("cache: disk write failed for %s: %v", path, err)
		return
	}
	c.log.Debug("cache store (disk): %s (%d bytes)", key[:12], len(audio))
}
