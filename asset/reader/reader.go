package reader

import (
	"context"
	"errors"
	"strings"

	"github.com/achilleasa/prism/accel"
	"github.com/achilleasa/prism/asset"
	"github.com/achilleasa/prism/scene"
)

var (
	ErrUnsupportedFormat = errors.New("reader: unsupported scene format")
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read a scene from a local file or URL. The supplied options configure the
// BVH builder used for every mesh and for the top level scene group.
func ReadScene(ctx context.Context, filename string, opts ...accel.Option) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".obj"):
		reader = newWavefrontReader(ctx, opts...)
	default:
		return nil, ErrUnsupportedFormat
	}

	res, err := asset.NewResourceContext(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
