package main

import (
	"github.com/duragraph/mdf/internal/instructions"
	"github.com/duragraph/mdf/internal/mdf"
)

// example bundles a frozen graph with the batches to stream into it —
// enough for runExample to build an Engine and drive it to completion.
type example struct {
	graph   *mdf.Graph
	batches [][]mdf.Assignment
}

// linearExample mirrors mdf_test.go's TestLinearChain: A(x)=x+1 -> B(y)=y*2.
func linearExample() example {
	g := mdf.NewGraph()
	a := g.AddInstruction(mdf.Instr1(func(x int) int { return x + 1 }, mdf.Param[int]("x")))
	b := g.AddInstruction(mdf.Instr1(func(y int) int { return y * 2 }, mdf.Param[int]("y")))
	g.Connect(a, b, "y")
	freeze(g)

	return example{graph: g, batches: [][]mdf.Assignment{
		{{Node: a, Param: "x", Token: mdf.WrapValue(3)}},
	}}
}

// diamondExample mirrors TestDiamond: A=x, B=a+1, C=a+2, D=b*c.
func diamondExample() example {
	g := mdf.NewGraph()
	a := g.AddInstruction(mdf.Instr1(func(x int) int { return x }, mdf.Param[int]("x")))
	b := g.AddInstruction(mdf.Instr1(func(a int) int { return a + 1 }, mdf.Param[int]("a")))
	c := g.AddInstruction(mdf.Instr1(func(a int) int { return a + 2 }, mdf.Param[int]("a")))
	d := g.AddInstruction(mdf.Instr2(func(b, c int) int { return b * c }, mdf.Param[int]("b"), mdf.Param[int]("c")))
	g.Connect(a, b, "a")
	g.Connect(a, c, "a")
	g.Connect(b, d, "b")
	g.Connect(c, d, "c")
	freeze(g)

	return example{graph: g, batches: [][]mdf.Assignment{
		{{Node: a, Param: "x", Token: mdf.WrapValue(4)}},
	}}
}

// sideEffectExample mirrors TestSideEffectDependency: a dependency-only
// edge (DeclareDependency) alongside the data edge.
func sideEffectExample() example {
	g := mdf.NewGraph()
	a := g.AddInstruction(mdf.Instr1(func(x int) int { return x }, mdf.Param[int]("x")))
	b := g.AddInstruction(mdf.Instr1(func(y int) int { return y + 100 }, mdf.Param[int]("y")))
	g.Connect(a, b, "y")
	g.DeclareDependency(a, b)
	freeze(g)

	return example{graph: g, batches: [][]mdf.Assignment{
		{{Node: a, Param: "x", Token: mdf.WrapValue(1)}},
	}}
}

// sineExample runs instructions.Sine over a handful of angles, one
// instance per angle.
func sineExample() example {
	g := mdf.NewGraph()
	n := g.AddInstruction(instructions.Sine())
	freeze(g)

	angles := []float64{0, 0.5235987755982988, 1.5707963267948966, 3.141592653589793}
	batches := make([][]mdf.Assignment, len(angles))
	for i, a := range angles {
		batches[i] = []mdf.Assignment{{Node: n, Param: "x", Token: mdf.WrapValue(a)}}
	}
	return example{graph: g, batches: batches}
}

// matvecExample multiplies a fixed 3x3 matrix by a fixed vector, one
// MatrixRow node per row, all three sharing the output slice as a
// side-effect target (grounded on examples/dependencies.cpp).
func matvecExample() example {
	vec := []float64{1, 2, 3}
	out := make([]float64, 3)
	matrix := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 1},
	}

	g := mdf.NewGraph()
	rows := make([]mdf.NodeId, len(matrix))
	for i := range matrix {
		rows[i] = g.AddInstruction(instructions.MatrixRow(out, i))
	}
	freeze(g)

	batch := make([]mdf.Assignment, 0, len(matrix)*2)
	for i, row := range matrix {
		batch = append(batch,
			mdf.Assignment{Node: rows[i], Param: "row", Token: mdf.WrapValue(instructions.Row(row))},
			mdf.Assignment{Node: rows[i], Param: "vec", Token: mdf.WrapValue(vec)},
		)
	}
	return example{graph: g, batches: [][]mdf.Assignment{batch}}
}

// mandelbrotExample runs a single image block's escape-time tree (the same
// shape cmd/mdfd's default graph uses) and prints its block maximum.
func mandelbrotExample() example {
	hst := instructions.NewHistogram(64)
	const (
		re0 = -0.74364396916876561516
		w   = -0.74364381764268717490 - (-0.74364396916876561516)
		im0 = 0.13182588262473313035
		ih  = 0.13182603415081157061 - 0.13182588262473313035
	)

	g := mdf.NewGraph()
	const (
		blockSize = 16
		lines     = 4
		maxIter   = 1000
	)
	nsplits := blockSize / lines
	leaves := make([]mdf.NodeId, nsplits)
	for i := range leaves {
		leaves[i] = g.AddInstruction(instructions.Escape(hst, re0, w, im0, ih, blockSize, lines, maxIter))
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
	freeze(g)

	batch := make([]mdf.Assignment, 0, len(leaves)*2)
	for i := range leaves {
		batch = append(batch,
			mdf.Assignment{Node: leaves[i], Param: "x0", Token: mdf.WrapValue(0)},
			mdf.Assignment{Node: leaves[i], Param: "y0", Token: mdf.WrapValue(hst.Size - 1 - i*lines)},
		)
	}
	return example{graph: g, batches: [][]mdf.Assignment{batch}}
}

// fanoutExample is the reverse of TestWorkStealingFanIn's shape: one source
// fanning its value out to 4 independent sinks, so each instance has
// several terminal tokens to print.
func fanoutExample() example {
	g := mdf.NewGraph()
	src := g.AddInstruction(mdf.Instr1(func(x int) int { return x }, mdf.Param[int]("x")))

	const sinks = 4
	for i := 0; i < sinks; i++ {
		i := i
		sink := g.AddInstruction(mdf.Instr1(func(v int) int { return v * (i + 1) }, mdf.Param[int]("v")))
		g.Connect(src, sink, "v")
	}
	freeze(g)

	return example{graph: g, batches: [][]mdf.Assignment{
		{{Node: src, Param: "x", Token: mdf.WrapValue(7)}},
	}}
}

func freeze(g *mdf.Graph) {
	if err := g.Freeze(); err != nil {
		panic(err)
	}
}
