package tracer

// The number of blocks generated per worker. Workers pull blocks from a shared
// queue so splitting the frame into more blocks than workers lets faster
// workers pick up a larger share of the frame.
const blocksPerWorker = 4

// Split a frame into row blocks for a pool of workers. The returned blocks
// are disjoint and cover all frame rows in top to bottom order.
func SplitFrame(frameH uint32, workers int) []BlockRequest {
	if frameH == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	numBlocks := uint32(workers * blocksPerWorker)
	blockH := (frameH + numBlocks - 1) / numBlocks

	blocks := make([]BlockRequest, 0, (frameH+blockH-1)/blockH)
	for y := uint32(0); y < frameH; y += blockH {
		h := blockH
		if y+h > frameH {
			h = frameH - y
		}
		blocks = append(blocks, BlockRequest{BlockY: y, BlockH: h})
	}
	return blocks
}
