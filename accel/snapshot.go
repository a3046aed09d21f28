package accel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const snapshotVersion uint32 = 1

var (
	snapshotMagic = [4]byte{'P', 'B', 'V', 'H'}

	ErrSnapshotFormat   = errors.New("accel: unrecognized snapshot format")
	ErrSnapshotMismatch = errors.New("accel: snapshot does not match primitive collection")
)

type snapshotHeader struct {
	Magic      [4]byte
	Version    uint32
	Primitives uint32
	Nodes      uint32
}

// WriteTo serializes the tree nodes and the primitive index list so that a
// tree can be restored with Load without rebuilding it. The primitive
// payload is not included.
func (t *BVH) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	header := snapshotHeader{
		Magic:      snapshotMagic,
		Version:    snapshotVersion,
		Primitives: uint32(len(t.indices)),
		Nodes:      uint32(len(t.nodes)),
	}
	for _, data := range []interface{}{header, t.nodes, t.indices} {
		if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
			return cw.n, err
		}
	}

	err := bw.Flush()
	return cw.n, err
}

// Load restores a tree written by WriteTo for the given primitive
// collection. The restored tree is validated before it is returned.
func Load(r io.Reader, prims Primitives) (*BVH, error) {
	br := bufio.NewReader(r)

	var header snapshotHeader
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotFormat, err)
	}
	if header.Magic != snapshotMagic {
		return nil, ErrSnapshotFormat
	}
	if header.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotFormat, header.Version)
	}

	count := prims.PrimitiveCount()
	if int(header.Primitives) != count {
		return nil, fmt.Errorf("%w: snapshot indexes %d primitives; collection has %d", ErrSnapshotMismatch, header.Primitives, count)
	}

	// A binary tree over n primitives never has more than 2n-1 nodes
	if (count == 0 && header.Nodes != 0) || (count > 0 && int(header.Nodes) > 2*count-1) {
		return nil, fmt.Errorf("%w: invalid node count %d", ErrSnapshotFormat, header.Nodes)
	}

	t := &BVH{
		prims:   prims,
		nodes:   make([]Node, header.Nodes),
		indices: make([]int32, header.Primitives),
	}
	if err := binary.Read(br, binary.LittleEndian, t.nodes); err != nil {
		return nil, fmt.Errorf("%w: reading nodes: %s", ErrSnapshotFormat, err)
	}
	if err := binary.Read(br, binary.LittleEndian, t.indices); err != nil {
		return nil, fmt.Errorf("%w: reading indices: %s", ErrSnapshotFormat, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	treeStats := t.TreeStats()
	t.stats = BuildStats{
		Primitives: count,
		Nodes:      treeStats.Nodes,
		Leaves:     treeStats.Leaves,
		MaxDepth:   treeStats.MaxDepth,
	}
	return t, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
