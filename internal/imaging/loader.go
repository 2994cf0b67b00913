package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FrameCache provides thread-safe caching of decoded frames.
//
// Frames are keyed by the exact path string used to load them. When the cache
// holds a positive capacity, the oldest entry is dropped once the capacity is
// exceeded, so replaying a long sequence does not keep every frame in memory.
//
// FrameCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache(64)
//	img, err := cache.Load("/path/to/frame_0001.png")
//	if err != nil {
//	    return err
//	}
type FrameCache struct {
	mu       sync.RWMutex
	capacity int
	frames   map[string]image.Image
	order    []string
}

// NewFrameCache creates an empty cache holding at most capacity frames.
// A capacity of zero or less means unbounded.
func NewFrameCache(capacity int) *FrameCache {
	return &FrameCache{
		capacity: capacity,
		frames:   make(map[string]image.Image),
	}
}

// Load returns a cached frame or decodes it from disk.
//
// Parameters:
//   - path: File path to a PNG, JPEG, or GIF frame.
//
// Returns:
//   - image.Image: The decoded frame.
//   - error: Non-nil if the file cannot be opened or decoded.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, _, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.frames[path]; ok {
		return cached, nil
	}
	c.frames[path] = img
	c.order = append(c.order, path)
	if c.capacity > 0 {
		for len(c.order) > c.capacity {
			delete(c.frames, c.order[0])
			c.order = c.order[1:]
		}
	}
	return img, nil
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Contains reports whether path is cached.
func (c *FrameCache) Contains(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.frames[path]
	return ok
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]image.Image)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes one frame from the cache. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.frames[path]; !ok {
		return
	}
	delete(c.frames, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// FrameInfo contains metadata about a frame file.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognised the file: "png", "jpeg" or "gif".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo reads the header of a frame file without decoding its pixels.
func LoadFrameInfo(path string) (*FrameInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FrameInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// frameExtensions lists the file extensions ListFrames picks up.
var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ListFrames resolves a directory or glob pattern to an ordered frame list.
//
// A directory yields every PNG, JPEG, or GIF file directly inside it; any
// other argument is treated as a glob pattern whose directory matches are
// skipped. Paths are sorted lexically, so frames should be named with
// zero-padded sequence numbers.
func ListFrames(pattern string) ([]string, error) {
	var matches []string

	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		entries, err := os.ReadDir(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			matches = append(matches, filepath.Join(pattern, e.Name()))
		}
	} else {
		globbed, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid frame pattern: %w", err)
		}
		for _, m := range globbed {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				matches = append(matches, m)
			}
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no frames found for %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}
