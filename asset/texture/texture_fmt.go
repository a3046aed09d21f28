package texture

type Format uint32

const (
	Luminance8 Format = iota
	Luminance32F
	Rgba8
	Rgba32F
)

// Get the number of bytes used by a single texel.
func (f Format) TexelSize() int {
	switch f {
	case Luminance8:
		return 1
	case Luminance32F, Rgba8:
		return 4
	default:
		return 16
	}
}
