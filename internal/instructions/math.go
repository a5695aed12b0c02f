// Package instructions provides ready-made node bodies for the common
// shapes a dataflow graph needs: pure math, the Mandelbrot reduction tree
// carried over from the original source's examples/mandelbrot.cpp, and
// nodes that call out to an LLM.
package instructions

import (
	"math"

	"github.com/duragraph/mdf/internal/mdf"
)

// Sine builds a single-input node computing math.Sin(x). Mostly useful for
// smoke-testing a topology end to end without any external dependency.
func Sine() mdf.Instruction {
	return mdf.Instr1(math.Sin, mdf.Param[float64]("x"))
}

// Row is one row of coefficients in a matrix-vector product.
type Row []float64

// MatrixRow builds a node computing the dot product of a matrix row
// against a shared vector, writing the result into out[index] as a
// side-effect — grounded on examples/dependencies.cpp's row-multiply node,
// which takes the row and the vector as data inputs and an output
// accumulator as a side-effect target. Callers should order this node
// after whatever (if anything) else writes into out via DeclareDependency,
// since out itself never flows through a data edge.
func MatrixRow(out []float64, index int) mdf.Instruction {
	return mdf.Instr2(func(row Row, vec []float64) float64 {
		var sum float64
		for i, coeff := range row {
			sum += coeff * vec[i]
		}
		out[index] = sum
		return sum
	}, mdf.Param[Row]("row"), mdf.Param[[]float64]("vec"))
}
