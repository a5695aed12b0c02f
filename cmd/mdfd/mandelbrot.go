package main

import (
	"github.com/duragraph/mdf/internal/instructions"
	"github.com/duragraph/mdf/internal/mdf"
)

// The default demo graph mdfd runs when launched with no other
// instructions: the Mandelbrot escape-count tree from
// examples/mandelbrot.cpp, sized down from the original's 1024x1024 for a
// quick default run.
const (
	imageSize = 256
	blockSize = 64
	nLines    = 4
	maxIter   = 10000
)

func buildMandelbrotGraph(hst *instructions.Histogram) (*mdf.Graph, []mdf.NodeId) {
	const (
		re0 = -0.74364396916876561516
		w   = -0.74364381764268717490 - (-0.74364396916876561516)
		im0 = 0.13182588262473313035
		ih  = 0.13182603415081157061 - 0.13182588262473313035
	)

	g := mdf.NewGraph()
	nsplits := blockSize / nLines

	leaves := make([]mdf.NodeId, nsplits)
	for i := 0; i < nsplits; i++ {
		leaves[i] = g.AddInstruction(instructions.Escape(hst, re0, w, im0, ih, blockSize, nLines, maxIter))
	}

	stage := leaves
	for len(stage) > 1 {
		next := make([]mdf.NodeId, len(stage)/2)
		for i := range next {
			next[i] = g.AddInstruction(instructions.Max2())
			g.Connect(stage[i*2], next[i], "a")
			g.Connect(stage[i*2+1], next[i], "b")
		}
		stage = next
	}

	return g, leaves
}

// mandelbrotBatches builds one launch batch per image block, each batch
// assigning (x0, y0) to every leaf node — the same per-block fan-out the
// original's Streamer::Next performs.
func mandelbrotBatches(leaves []mdf.NodeId) [][]mdf.Assignment {
	blocksPerSide := imageSize / blockSize
	nblocks := blocksPerSide * blocksPerSide
	linesPerLeaf := blockSize / nLines

	batches := make([][]mdf.Assignment, 0, nblocks)
	for idx := 0; idx < nblocks; idx++ {
		x0 := (idx % blocksPerSide) * blockSize
		ybase := imageSize - 1 - (idx/blocksPerSide)*blockSize

		batch := make([]mdf.Assignment, 0, linesPerLeaf*2)
		for i := 0; i < linesPerLeaf; i++ {
			batch = append(batch,
				mdf.Assignment{Node: leaves[i], Param: "x0", Token: mdf.WrapValue(x0)},
				mdf.Assignment{Node: leaves[i], Param: "y0", Token: mdf.WrapValue(ybase - i*nLines)},
			)
		}
		batches = append(batches, batch)
	}
	return batches
}
