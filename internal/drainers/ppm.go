package drainers

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"

	"github.com/duragraph/mdf/internal/instructions"
	"github.com/duragraph/mdf/internal/mdf"
)

// PPMWriter tracks the running maximum escape count across every terminal
// token of a Mandelbrot graph, then renders the shared Histogram to a
// binary PPM file — a direct port of examples/mandelbrot.cpp's
// Histogram::ToPPM, moved from a method on the accumulator itself to a
// Drainer that owns the file-writing side-effect.
type PPMWriter struct {
	hst *instructions.Histogram
}

// NewPPMWriter builds a drainer tracking hst's running maximum.
func NewPPMWriter(hst *instructions.Histogram) *PPMWriter {
	return &PPMWriter{hst: hst}
}

func (w *PPMWriter) Accept(_ context.Context, _ mdf.NodeId, tok mdf.Token) error {
	iter, ok := tok.Value().(int)
	if !ok {
		return fmt.Errorf("drainers: PPMWriter expects int tokens, got %T", tok.Value())
	}
	// the Max2 reduction tree already folds this down to one value per
	// instance; tracking the max across instances here covers graphs that
	// stream one strip-reduction per call to Next.
	if iter > w.hst.MaxIter() {
		w.hst.Data[0] = iter
	}
	return nil
}

// WriteFile renders the histogram to name as a binary P6 PPM image, using
// maxIterCutoff to mark fully-bound pixels black, exactly as the original's
// Histogram::ToPPM does.
func (w *PPMWriter) WriteFile(name string, maxIterCutoff int) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("drainers: opening %s: %w", name, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	size := w.hst.Size
	fmt.Fprintf(bw, "P6 %d %d 255\n", size, size)

	maxVal := float64(w.hst.MaxIter())
	if maxVal == 0 {
		maxVal = 1
	}
	for _, v := range w.hst.Data {
		if v == maxIterCutoff {
			bw.Write([]byte{0, 0, 0})
			continue
		}
		intensity := math.Pow(1.0-(float64(v)/maxVal), 8.0)
		bw.Write([]byte{
			byte(intensity * 128),
			byte(intensity * 128),
			byte(intensity * 255),
		})
	}
	return bw.Flush()
}
