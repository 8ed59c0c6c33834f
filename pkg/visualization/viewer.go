// Package visualization converts floating-point frames to and from images
// and writes frame sequences to disk for inspection. Frames are rendered as
// 16-bit grayscale PNGs with the pixel range stretched to the frame's
// minimum and maximum, plus an optional downscaled 8-bit preview.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"

	"cuberescale/pkg/cube"
)

// FrameImage renders a frame as a 16-bit grayscale image, mapping the
// frame's minimum to black and its maximum to white. A constant frame is
// rendered black.
func FrameImage(f *mat.Dense) (*image.Gray16, error) {
	if f == nil {
		return nil, fmt.Errorf("nil frame")
	}
	rows, cols := f.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	stats := cube.Stats(f)
	span := stats.Max - stats.Min

	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var v float64
			if span > 0 {
				v = (f.At(y, x) - stats.Min) / span
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v * 65535)})
		}
	}
	return img, nil
}

// FrameFromImage converts an image into a frame of float64 gray levels in
// [0, 1], using the standard luminance weighting for color inputs.
func FrameFromImage(img image.Image) (*mat.Dense, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("empty image")
	}

	f := mat.NewDense(rows, cols, nil)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			f.Set(y, x, float64(g.Y)/65535)
		}
	}
	return f, nil
}

// SaveFrame writes a frame to disk as a 16-bit grayscale PNG.
func SaveFrame(f *mat.Dense, filename string) error {
	img, err := FrameImage(f)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveCubeSequence writes every frame of a cube to outputDir as numbered
// PNG files.
func SaveCubeSequence(c *cube.Cube, outputDir string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for i := 0; i < c.NFrames(); i++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%03d.png", i))
		if err := SaveFrame(c.Frame(i), filename); err != nil {
			return fmt.Errorf("saving frame %d: %w", i, err)
		}
	}
	return nil
}

// Preview renders a frame and downscales it to at most maxWidth pixels
// across, preserving the aspect ratio. Frames already narrower than
// maxWidth are returned at their native size.
func Preview(f *mat.Dense, maxWidth int) (image.Image, error) {
	img, err := FrameImage(f)
	if err != nil {
		return nil, err
	}
	if maxWidth < 1 {
		return nil, fmt.Errorf("preview width %d must be positive", maxWidth)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return img, nil
	}

	w := maxWidth
	h := int(float64(bounds.Dy()) / float64(bounds.Dx()) * float64(w))
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, bounds, draw.Over, nil)
	return dst, nil
}

// SavePreview writes a downscaled preview of a frame as an 8-bit PNG.
func SavePreview(f *mat.Dense, maxWidth int, filename string) error {
	img, err := Preview(f, maxWidth)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
