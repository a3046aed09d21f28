package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/asset"
	"github.com/achilleasa/prism/types"
)

// A texture image and its metadata. Float formats store each channel as a
// little-endian float32.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []byte
}

// A texture can be used as an alpha mask.
var _ accel.AlphaMask = (*Texture)(nil)

// Create a new texture from a Resource. 8-bit images are stored as Luminance8
// or Rgba8 textures; images with 16-bit channels are converted to float
// textures.
func New(res *asset.Resource) (*Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("texture: %s has no pixels", res.Path())
	}

	var texFmt Format
	switch img.(type) {
	case *image.Gray:
		texFmt = Luminance8
	case *image.Gray16:
		texFmt = Luminance32F
	case *image.RGBA64, *image.NRGBA64:
		texFmt = Rgba32F
	default:
		texFmt = Rgba8
	}

	texture := &Texture{
		Format: texFmt,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
	texture.Data = make([]byte, 0, bounds.Dx()*bounds.Dy()*texFmt.TexelSize())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			texture.Data = texture.appendTexel(texture.Data, img.At(x, y))
		}
	}

	return texture, nil
}

func (t *Texture) appendTexel(data []byte, c color.Color) []byte {
	switch t.Format {
	case Luminance8:
		return append(data, color.GrayModel.Convert(c).(color.Gray).Y)
	case Luminance32F:
		gray := color.Gray16Model.Convert(c).(color.Gray16)
		return binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(gray.Y)/0xffff))
	case Rgba8:
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		return append(data, nrgba.R, nrgba.G, nrgba.B, nrgba.A)
	default:
		nrgba := color.NRGBA64Model.Convert(c).(color.NRGBA64)
		for _, ch := range [4]uint16{nrgba.R, nrgba.G, nrgba.B, nrgba.A} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(ch)/0xffff))
		}
		return data
	}
}

// Get the channel values of the texel at (x, y) in [0, 1]. Luminance
// textures report the same value for all color channels and an alpha of 1.
func (t *Texture) Texel(x, y uint32) [4]float32 {
	offset := int(y*t.Width+x) * t.Format.TexelSize()
	switch t.Format {
	case Luminance8:
		l := float32(t.Data[offset]) / 255
		return [4]float32{l, l, l, 1}
	case Luminance32F:
		l := math.Float32frombits(binary.LittleEndian.Uint32(t.Data[offset:]))
		return [4]float32{l, l, l, 1}
	case Rgba8:
		return [4]float32{
			float32(t.Data[offset]) / 255,
			float32(t.Data[offset+1]) / 255,
			float32(t.Data[offset+2]) / 255,
			float32(t.Data[offset+3]) / 255,
		}
	default:
		var texel [4]float32
		for ch := range texel {
			texel[ch] = math.Float32frombits(binary.LittleEndian.Uint32(t.Data[offset+4*ch:]))
		}
		return texel
	}
}

// Sample the opacity at uv using nearest neighbor filtering. Texture
// coordinates wrap around and v points up. Luminance textures are
// interpreted as grayscale opacity maps; color textures use their alpha
// channel.
func (t *Texture) Scalar(uv types.Vec2) float32 {
	x := wrap(uv[0], t.Width)
	y := wrap(1-uv[1], t.Height)

	texel := t.Texel(x, y)
	switch t.Format {
	case Luminance8, Luminance32F:
		return texel[0]
	default:
		return texel[3]
	}
}

// Map a texture coordinate to a texel index, repeating the texture outside
// the [0, 1) range.
func wrap(coord float32, size uint32) uint32 {
	f := coord - float32(math.Floor(float64(coord)))
	index := uint32(f * float32(size))
	if index >= size {
		index = size - 1
	}
	return index
}
