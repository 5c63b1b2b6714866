package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WEBP format decoder
)

// ErrNotImage is returned when a data URL or byte stream does not carry an
// image.
var ErrNotImage = errors.New("not an image")

// Decoded is an image together with the format name reported by the decoder.
type Decoded struct {
	Image  image.Image
	Format string
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Once an image is loaded, subsequent Load calls for the same path return the
// cached copy without disk I/O. Different spellings of the same file
// (relative vs absolute) are separate entries.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	dec, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    return err
//	}
//	buf := imaging.NewBuffer(dec, 800, 600)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Decoded
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Decoded),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not in a supported image format
func (c *ImageCache) Load(path string) (*Decoded, error) {
	c.mu.RLock()
	if dec, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return dec, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	dec, err := Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = dec
	c.mu.Unlock()

	return dec, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Decoded)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Decode reads an image stream, applying EXIF orientation when present.
func Decode(r io.Reader) (*Decoded, error) {
	var head bytes.Buffer
	_, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Decoded{Image: img, Format: format}, nil
}

// DecodeBytes decodes an in-memory image, such as a pasted or dropped file.
func DecodeBytes(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotImage)
	}
	return Decode(bytes.NewReader(data))
}

// DecodeDataURL decodes a base64 "data:image/<type>;base64,<payload>" URL.
//
// URLs whose media type is not image/* are rejected with ErrNotImage before
// any decoding is attempted.
func DecodeDataURL(url string) (*Decoded, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(url), "data:")
	if !ok {
		return nil, fmt.Errorf("invalid data URL: missing data: scheme")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL: missing payload")
	}

	mediaType, params, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return nil, fmt.Errorf("%w: media type %q", ErrNotImage, mediaType)
	}
	if !strings.Contains(strings.ToLower(params), "base64") {
		return nil, fmt.Errorf("invalid data URL: only base64 payloads are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data URL payload: %w", err)
	}
	return DecodeBytes(data)
}
