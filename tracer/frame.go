package tracer

import (
	"image"

	"github.com/achilleasa/prism/types"
)

// A Frame stores the traced color of each pixel.
type Frame struct {
	Width  uint32
	Height uint32

	// RGB triplets in row-major order starting from the top-left pixel.
	Accum []float32

	// Statistics for the tracers that rendered the frame.
	Stats Stats
}

// Allocate a frame.
func NewFrame(width, height uint32) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Accum:  make([]float32, 3*int(width)*int(height)),
	}
}

// Set the color of a pixel.
func (f *Frame) Set(x, y uint32, color types.Vec3) {
	offset := 3 * (int(y)*int(f.Width) + int(x))
	f.Accum[offset] = color[0]
	f.Accum[offset+1] = color[1]
	f.Accum[offset+2] = color[2]
}

// Get the color of a pixel.
func (f *Frame) At(x, y uint32) types.Vec3 {
	offset := 3 * (int(y)*int(f.Width) + int(x))
	return types.XYZ(f.Accum[offset], f.Accum[offset+1], f.Accum[offset+2])
}

// Convert the frame into an 8-bit image. Colors are clamped to [0, 1].
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	pixel := 0
	for i := 0; i < len(f.Accum); i += 3 {
		img.Pix[pixel] = toByte(f.Accum[i])
		img.Pix[pixel+1] = toByte(f.Accum[i+1])
		img.Pix[pixel+2] = toByte(f.Accum[i+2])
		img.Pix[pixel+3] = 255
		pixel += 4
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(clamp(v, 0, 1)*255 + 0.5)
}
