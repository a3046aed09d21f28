package tracer

import "testing"

func TestSplitFrame(t *testing.T) {
	type spec struct {
		frameH    uint32
		workers   int
		expBlocks int
		expBlockH uint32
		expLastH  uint32
	}
	specs := []spec{
		{512, 4, 16, 32, 32},
		{10, 4, 10, 1, 1},
		{100, 3, 12, 9, 1},
		{7, 0, 4, 2, 1},
		{1, 8, 1, 1, 1},
		{0, 4, 0, 0, 0},
	}

	for index, s := range specs {
		blocks := SplitFrame(s.frameH, s.workers)
		if len(blocks) != s.expBlocks {
			t.Errorf("[spec %d] expected %d blocks; got %d", index, s.expBlocks, len(blocks))
			continue
		}
		if len(blocks) == 0 {
			continue
		}

		if blocks[0].BlockH != s.expBlockH {
			t.Errorf("[spec %d] expected block height %d; got %d", index, s.expBlockH, blocks[0].BlockH)
		}
		if last := blocks[len(blocks)-1]; last.BlockH != s.expLastH {
			t.Errorf("[spec %d] expected last block height %d; got %d", index, s.expLastH, last.BlockH)
		}

		// Blocks must be contiguous and cover the frame
		var nextY uint32
		for blockIndex, block := range blocks {
			if block.BlockY != nextY {
				t.Errorf("[spec %d] expected block %d to start at row %d; got %d", index, blockIndex, nextY, block.BlockY)
			}
			nextY = block.BlockY + block.BlockH
		}
		if nextY != s.frameH {
			t.Errorf("[spec %d] expected blocks to cover %d rows; got %d", index, s.frameH, nextY)
		}
	}
}
