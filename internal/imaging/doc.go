// Package imaging loads images and performs the pixel-level operations the
// color picker needs on an image buffer.
//
// It sits between the pure computations in package picker and the session
// that owns the current image: it decodes files and data URLs, renders the
// decoded image into a display buffer, samples pixels, builds the magnified
// preview, extracts a dominant palette, and averages or compares regions.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Display Buffer
//
// A Buffer is what the picker samples from. Large images are scaled down to
// fit a maximum display box (800x600 by default), exactly as a page canvas
// would hold them, so a picked coordinate refers to the scaled buffer and
// not the original file. A zero maximum keeps the original resolution.
//
// # Supported Formats
//
// PNG, JPEG and GIF through the standard library; BMP, TIFF and WEBP through
// golang.org/x/image. EXIF orientation is applied on decode.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Buffers are read-only after
// construction and every sampling function is stateless.
package imaging
