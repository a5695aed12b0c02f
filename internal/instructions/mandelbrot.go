package instructions

import "github.com/duragraph/mdf/internal/mdf"

// Histogram is the mutable per-image accumulator that a Mandelbrot
// dataflow graph's leaf nodes write escape-iteration counts into. Each
// Escape node targets a disjoint range of Data, so — exactly as in the
// original's examples/mandelbrot.cpp, which shares a raw int* across leaf
// nodes with no locking — concurrent writes from many workers need no
// synchronization here either.
type Histogram struct {
	Size int
	Data []int
}

// NewHistogram allocates a size x size escape-count grid.
func NewHistogram(size int) *Histogram {
	return &Histogram{Size: size, Data: make([]int, size*size)}
}

// MaxIter returns the largest recorded escape count, used by a PPM-writing
// Drainer to normalize intensity.
func (h *Histogram) MaxIter() int {
	max := 0
	for _, v := range h.Data {
		if v > max {
			max = v
		}
	}
	return max
}

// Escape builds a node computing Mandelbrot escape counts for one
// blockSize x lines strip of the complex-plane window [re0, re0+w) x
// [im0, im0+ih), starting at pixel (x0, y0), and returns the strip's own
// maximum count — the value a Max2 reduction tree above it folds pairwise,
// mirroring the leaf/combiner split in examples/mandelbrot.cpp.
func Escape(hst *Histogram, re0, w, im0, ih float64, blockSize, lines, maxIter int) mdf.Instruction {
	fn := func(x0, y0 int) int {
		best := 0
		for k := 0; k < lines; k++ {
			for j := 0; j < blockSize; j++ {
				reC := re0 + float64(x0+j)*w/float64(hst.Size)
				imC := im0 + float64(y0-k)*ih/float64(hst.Size)
				re, im := 0.0, 0.0
				i := 0
				for i < maxIter && re*re+im*im <= 4.0 {
					tmp := re*re - im*im + reC
					im = 2.0*re*im + imC
					re = tmp
					i++
				}
				hst.Data[(hst.Size-1-(y0-k))*hst.Size+(x0+j)] = i
				if i > best {
					best = i
				}
			}
		}
		return best
	}
	return mdf.Instr2(fn, mdf.Param[int]("x0"), mdf.Param[int]("y0"))
}

// Max2 builds the pairwise-max combiner node used to fold Escape strips'
// maxima up a binary reduction tree, the shape
// examples/mandelbrot.cpp stacks above its leaf row.
func Max2() mdf.Instruction {
	return mdf.Instr2(func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}, mdf.Param[int]("a"), mdf.Param[int]("b"))
}
