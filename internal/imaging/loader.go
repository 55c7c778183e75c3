package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/image-edges-mcp/internal/edges"
)

// ImageCache provides thread-safe caching of decoded source images so that
// repeated detect, overlay and crop calls on the same file do not re-read it.
//
// Images are keyed by the exact path string passed to Load. Different paths to
// the same file (relative vs absolute) are separate entries. Each entry
// remembers the file's modification time and size; a file rewritten in place
// is decoded again on the next Load.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, raster, err := imaging.LoadRaster(cache, "/path/to/image.png")
//	if err != nil {
//	    return err
//	}
//	res, err := detector.Detect(ctx, raster)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cacheEntry
}

type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
}

func (e cacheEntry) matches(info fs.FileInfo) bool {
	return e.modTime.Equal(info.ModTime()) && e.size == info.Size()
}

// NewImageCache creates an empty cache, ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cacheEntry),
	}
}

// Load retrieves an image from the cache or decodes it from disk. A cached
// image whose file changed since it was decoded is replaced.
//
// Supported formats are PNG, JPEG, and GIF.
//
// # Errors
//
//   - edges.ErrPixelAccess if the file cannot be read for permission reasons
//     or decodes to an image with no pixels
//   - edges.ErrInvalidInput if the file is not a decodable image
//   - a wrapped *fs.PathError for any other open failure (e.g. missing file)
//
// On any error a stale entry for path is evicted.
func (c *ImageCache) Load(path string) (image.Image, error) {
	img, err := c.load(path)
	if err != nil {
		c.Evict(path)
	}
	return img, err
}

func (c *ImageCache) load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, errors.Wrapf(edges.ErrPixelAccess, "cannot read %s: %v", path, err)
		}
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok && entry.matches(info) {
		return entry.img, nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(edges.ErrInvalidInput, "failed to decode image %s: %v", path, err)
	}
	if img.Bounds().Empty() {
		return nil, errors.Wrapf(edges.ErrPixelAccess, "image %s has no pixels", path)
	}

	c.mu.Lock()
	c.images[path] = cacheEntry{img: img, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache. It reports whether path was
// cached.
func (c *ImageCache) Evict(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.images[path]
	delete(c.images, path)
	return ok
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ToRaster converts any decoded image into the row-major RGBA buffer the edge
// pipeline consumes. The result is non-premultiplied and origin-aligned at
// (0,0) regardless of img.Bounds().Min.
func ToRaster(img image.Image) (edges.RasterImage, error) {
	if img == nil || img.Bounds().Empty() {
		return edges.RasterImage{}, errors.Wrap(edges.ErrPixelAccess, "image has no readable pixels")
	}

	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*w]
		copy(pix[4*w*y:], src)
	}

	return edges.RasterImage{Width: w, Height: h, Pix: pix}, nil
}

// LoadRaster loads path through the cache and returns both the decoded image,
// for rendering, and its raster form, for detection.
func LoadRaster(cache *ImageCache, path string) (image.Image, edges.RasterImage, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, edges.RasterImage{}, err
	}
	raster, err := ToRaster(img)
	if err != nil {
		return nil, edges.RasterImage{}, errors.Wrapf(err, "image %s", path)
	}
	return img, raster, nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	// The edge pipeline ignores alpha.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and returns its metadata.
//
// # Format Detection
//
// The format is determined by file extension (case-insensitive):
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - Other extensions -> "unknown"
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it into the cache
// if needed.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
