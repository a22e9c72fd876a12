// Package preview decodes imported images for the read-only preview screen.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"filedeck/internal/errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxBytes bounds how much of an image is decoded.
const MaxBytes = 64 << 20

// MaxPixels bounds the decoded size. A small file can declare dimensions
// whose pixel buffer would not fit in memory.
var MaxPixels = 40_000_000

// Info is what the preview header shows.
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d", strings.ToUpper(i.Format), i.Width, i.Height)
}

// Describe reads the image header only.
func Describe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{Bytes: len(data)}, errors.Wrap(err, "unrecognized image")
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: len(data)}, nil
}

// Decode decodes data, converting paletted images to RGBA.
func Decode(data []byte) (image.Image, error) {
	if len(data) > MaxBytes {
		return nil, errors.Newf("image too large to preview: %d bytes", len(data))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(MaxPixels) {
		return nil, errors.Newf("image too large to preview: %dx%d pixels", cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	if _, ok := img.(*image.Paletted); ok {
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		img = rgba
	}
	return img, nil
}

// Render draws the image with upper half blocks, two pixel rows per text
// line, at most cols cells wide. Images are never scaled up.
func Render(data []byte, cols int) (string, error) {
	img, err := Decode(data)
	if err != nil {
		return "", err
	}
	return RenderImage(img, cols), nil
}

// RenderImage is Render for an already decoded image.
func RenderImage(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || cols <= 0 {
		return ""
	}
	if cols > b.Dx() {
		cols = b.Dx()
	}
	rows := b.Dy() * cols / b.Dx()
	if rows < 2 {
		rows = 2
	}
	if rows%2 != 0 {
		rows++
	}

	scaled := resize.Resize(uint(cols), uint(rows), img, resize.Lanczos3)
	sb := scaled.Bounds()

	var out strings.Builder
	for y := sb.Min.Y; y < sb.Max.Y; y += 2 {
		if y > sb.Min.Y {
			out.WriteByte('\n')
		}
		for x := sb.Min.X; x < sb.Max.X; x++ {
			top := hex(scaled.At(x, y))
			bottom := top
			if y+1 < sb.Max.Y {
				bottom = hex(scaled.At(x, y+1))
			}
			out.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
	}
	return out.String()
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
