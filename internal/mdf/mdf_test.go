package mdf

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectingDrainer accumulates every terminal token it receives, under a
// mutex, so tests can inspect the final multiset once Start returns.
type collectingDrainer struct {
	mu     sync.Mutex
	tokens []Token
}

func (d *collectingDrainer) Accept(_ context.Context, _ NodeId, tok Token) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = append(d.tokens, tok)
	return nil
}

func (d *collectingDrainer) values() []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]any, len(d.tokens))
	for i, tok := range d.tokens {
		out[i] = tok.Value()
	}
	return out
}

// batchStreamer replays a fixed sequence of batches, then signals
// end-of-stream with an empty one.
type batchStreamer struct {
	mu      sync.Mutex
	batches [][]Assignment
	next    int
}

func (s *batchStreamer) Next(context.Context) ([]Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.next]
	s.next++
	return b, nil
}

func TestLinearChain(t *testing.T) {
	// S1 — Linear chain: A(x)=x+1 -> B(y)=y*2, batch {(A,"x",3)}, expect 8.
	g := NewGraph()
	a := g.AddInstruction(Instr1(func(x int) int { return x + 1 }, Param[int]("x")))
	b := g.AddInstruction(Instr1(func(y int) int { return y * 2 }, Param[int]("y")))
	require.True(t, g.Connect(a, b, "y"))
	require.NoError(t, g.Freeze())

	d := &collectingDrainer{}
	e, err := New(g, 4, d)
	require.NoError(t, err)

	s := &batchStreamer{batches: [][]Assignment{
		{{Node: a, Param: "x", Token: WrapValue(3)}},
	}}
	_, err = e.Start(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, d.tokens, 1)
	assert.Equal(t, 8, d.tokens[0].Value())
}

func TestDiamond(t *testing.T) {
	// S2 — Diamond: A=x, B=a+1, C=a+2, D=b*c; A->B.a, A->C.a, B->D.b, C->D.c.
	// Batch {(A,"x",4)} expects 30 ((4+1)*(4+2)).
	g := NewGraph()
	a := g.AddInstruction(Instr1(func(x int) int { return x }, Param[int]("x")))
	b := g.AddInstruction(Instr1(func(a int) int { return a + 1 }, Param[int]("a")))
	c := g.AddInstruction(Instr1(func(a int) int { return a + 2 }, Param[int]("a")))
	dnode := g.AddInstruction(Instr2(func(b, c int) int { return b * c }, Param[int]("b"), Param[int]("c")))
	require.True(t, g.Connect(a, b, "a"))
	require.True(t, g.Connect(a, c, "a"))
	require.True(t, g.Connect(b, dnode, "b"))
	require.True(t, g.Connect(c, dnode, "c"))
	require.NoError(t, g.Freeze())

	drainer := &collectingDrainer{}
	e, err := New(g, 4, drainer)
	require.NoError(t, err)

	s := &batchStreamer{batches: [][]Assignment{
		{{Node: a, Param: "x", Token: WrapValue(4)}},
	}}
	_, err = e.Start(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, drainer.tokens, 1)
	assert.Equal(t, 30, drainer.tokens[0].Value())
}

func TestSideEffectDependency(t *testing.T) {
	// S3 — A(x)=x, B(y)=y+100, Connect(A,B,"y") + DeclareDependency(A,B).
	// Batch {(A,"x",1)} expects 101, and B.inDegree == 1.
	g := NewGraph()
	a := g.AddInstruction(Instr1(func(x int) int { return x }, Param[int]("x")))
	b := g.AddInstruction(Instr1(func(y int) int { return y + 100 }, Param[int]("y")))
	require.True(t, g.Connect(a, b, "y"))
	g.DeclareDependency(a, b)

	assert.EqualValues(t, 1, g.Node(b).inDegree)

	require.NoError(t, g.Freeze())
	drainer := &collectingDrainer{}
	e, err := New(g, 4, drainer)
	require.NoError(t, err)

	s := &batchStreamer{batches: [][]Assignment{
		{{Node: a, Param: "x", Token: WrapValue(1)}},
	}}
	_, err = e.Start(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, drainer.tokens, 1)
	assert.Equal(t, 101, drainer.tokens[0].Value())
}

func TestMultiInstance(t *testing.T) {
	// S4 — 1000 instances of the S1 chain with x ranging 0..999; expect the
	// multiset {(i+1)*2 | i in 0..999}.
	g := NewGraph()
	a := g.AddInstruction(Instr1(func(x int) int { return x + 1 }, Param[int]("x")))
	b := g.AddInstruction(Instr1(func(y int) int { return y * 2 }, Param[int]("y")))
	require.True(t, g.Connect(a, b, "y"))
	require.NoError(t, g.Freeze())

	drainer := &collectingDrainer{}
	e, err := New(g, 8, drainer)
	require.NoError(t, err)

	const n = 1000
	batches := make([][]Assignment, n)
	for i := 0; i < n; i++ {
		batches[i] = []Assignment{{Node: a, Param: "x", Token: WrapValue(i)}}
	}
	s := &batchStreamer{batches: batches}
	_, err = e.Start(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, drainer.tokens, n)
	got := make([]int, n)
	for i, v := range drainer.values() {
		got[i] = v.(int)
	}
	sort.Ints(got)
	want := make([]int, n)
	for i := 0; i < n; i++ {
		want[i] = (i + 1) * 2
	}
	assert.Equal(t, want, got)
}

func TestWorkStealingFanIn(t *testing.T) {
	// S5 — 16 independent nodes feeding a common sink; worker pool of 8.
	// Every source must fire exactly once, and the sink must fire exactly
	// once, regardless of which worker happens to steal which node.
	const fanIn = 16
	g := NewGraph()
	var fireCounts [fanIn]atomic.Int32

	sources := make([]NodeId, fanIn)
	params := make([]ParamDecl, fanIn)
	for i := 0; i < fanIn; i++ {
		i := i
		sources[i] = g.AddInstruction(Instr1(func(x int) int {
			fireCounts[i].Add(1)
			if !testing.Short() {
				time.Sleep(5 * time.Millisecond)
			}
			return x
		}, Param[int]("x")))
		params[i] = Param[int](portName(i))
	}

	var sinkFired atomic.Int32
	sink := g.AddInstruction(InstrN(params, func(_ NodeId, inputs map[string]Token) (Token, error) {
		sinkFired.Add(1)
		sum := 0
		for i := 0; i < fanIn; i++ {
			v, err := recoverValue[int](inputs[portName(i)], 0, portName(i))
			if err != nil {
				return Token{}, err
			}
			sum += v
		}
		return WrapValue(sum), nil
	}))

	for i := 0; i < fanIn; i++ {
		require.True(t, g.Connect(sources[i], sink, portName(i)))
	}
	require.NoError(t, g.Freeze())

	drainer := &collectingDrainer{}
	e, err := New(g, 8, drainer)
	require.NoError(t, err)

	batch := make([]Assignment, fanIn)
	for i := 0; i < fanIn; i++ {
		batch[i] = Assignment{Node: sources[i], Param: "x", Token: WrapValue(i)}
	}
	s := &batchStreamer{batches: [][]Assignment{batch}}

	start := time.Now()
	_, err = e.Start(context.Background(), s)
	require.NoError(t, err)
	elapsed := time.Since(start)

	for i := 0; i < fanIn; i++ {
		assert.EqualValues(t, 1, fireCounts[i].Load(), "source %d should fire exactly once", i)
	}
	assert.EqualValues(t, 1, sinkFired.Load())
	require.Len(t, drainer.tokens, 1)
	assert.Equal(t, 120, drainer.tokens[0].Value()) // 0+1+...+15

	if !testing.Short() {
		// Eight workers splitting sixteen 5ms sources should finish well
		// under the fully-serial 80ms bound; this is a coarse parallelism
		// smoke check, not a precise scheduling guarantee.
		assert.Less(t, elapsed, 60*time.Millisecond)
	}
}

func portName(i int) string {
	return "p" + string(rune('a'+i))
}

func TestTypeMismatchIsFatal(t *testing.T) {
	// S6 — A(x:int); streamer supplies a float64 at "x". Expect a fatal
	// error out of Start, wrapping ErrTypeMismatch.
	g := NewGraph()
	a := g.AddInstruction(Instr1(func(x int) int { return x }, Param[int]("x")))
	require.NoError(t, g.Freeze())

	drainer := &collectingDrainer{}
	e, err := New(g, 2, drainer)
	require.NoError(t, err)

	s := &batchStreamer{batches: [][]Assignment{
		{{Node: a, Param: "x", Token: WrapValue(3.14)}},
	}}
	_, err = e.Start(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Empty(t, drainer.tokens)
}
