package mdf

import "fmt"

// NodeId is a small integer ordinal, stable within a Graph, assigned
// sequentially from 0 by AddInstruction. It is deliberately not a UUID or
// string: the scheduler's sharded state map hashes it and the work-stealing
// queues key tasks by it, so a dense, cheap-to-hash integer keeps the hot
// path allocation-free (see SPEC_FULL.md §3).
type NodeId int

// dataEdge is one outgoing data edge, routing a node's output to a named
// input port of another node. Equivalent to mdf::ParameterAddress.
type dataEdge struct {
	dst   NodeId
	param string
}

// Node is a graph vertex: an instruction plus its outgoing data edges and
// side-effect dependents. Mirrors mdf::Node.
type Node struct {
	id          NodeId
	instruction Instruction
	outEdges    map[dataEdge]struct{}
	dependents  map[NodeId]struct{}
	inDegree    uint
}

// ID returns the node's stable ordinal.
func (n *Node) ID() NodeId { return n.id }

// Instruction returns the node's instruction body.
func (n *Node) Instruction() Instruction { return n.instruction }

// Terminal reports whether n has no outgoing data edges and no dependents
// — its output is routed to the Drainer.
func (n *Node) Terminal() bool {
	return len(n.outEdges) == 0 && len(n.dependents) == 0
}

func (n *Node) clone() *Node {
	edges := make(map[dataEdge]struct{}, len(n.outEdges))
	for e := range n.outEdges {
		edges[e] = struct{}{}
	}
	deps := make(map[NodeId]struct{}, len(n.dependents))
	for d := range n.dependents {
		deps[d] = struct{}{}
	}
	return &Node{
		id:          n.id,
		instruction: n.instruction.Clone(),
		outEdges:    edges,
		dependents:  deps,
		inDegree:    n.inDegree,
	}
}

// Graph is the static, append-only topology: an ordered vector of nodes
// indexed by NodeId. Construction is append-only; Freeze snapshots
// derived bookkeeping (terminal count, optional cycle check) and the graph
// becomes safe to Clone per streamer step. Mirrors mdf::Graph.
type Graph struct {
	nodes    []*Node
	frozen   bool
	checkCyc bool

	terminalCount int
}

// NewGraph returns an empty, mutable graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddInstruction appends a new node wrapping instr and returns its id.
// Arity equals len(instr.Params()). No validation that parameter names are
// unique across the graph is performed — only within a single node's own
// Params(), which is the caller's responsibility when building instr.
func (g *Graph) AddInstruction(instr Instruction) NodeId {
	id := NodeId(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		id:          id,
		instruction: instr,
		outEdges:    make(map[dataEdge]struct{}),
		dependents:  make(map[NodeId]struct{}),
	})
	return id
}

// Connect adds a data edge src -> dst.paramName. Returns true if a new edge
// was inserted, false if it already existed (duplicates are rejected
// silently, matching mdf::Graph::Connect's set semantics). paramName must
// be one of dst's declared parameter names; that constraint is enforced at
// firing time as a *MissingPortError, not here — exactly as spec.md §4.1
// requires.
func (g *Graph) Connect(src, dst NodeId, paramName string) bool {
	g.mustValid(src)
	g.mustValid(dst)
	e := dataEdge{dst: dst, param: paramName}
	n := g.nodes[src]
	if _, exists := n.outEdges[e]; exists {
		return false
	}
	n.outEdges[e] = struct{}{}
	return true
}

// DeclareDependency adds a side-effect ordering edge: dst may only fire
// after src has fired. Declaring the same dependency twice is idempotent
// (Node.dependents is a set), matching the C++ unordered_set behavior.
func (g *Graph) DeclareDependency(src, dst NodeId) {
	g.mustValid(src)
	g.mustValid(dst)
	n := g.nodes[src]
	if _, exists := n.dependents[dst]; exists {
		return
	}
	n.dependents[dst] = struct{}{}
	g.nodes[dst].inDegree++
}

// NodeCount returns the number of nodes added so far.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Node returns the node for id. Panics (a programming error per spec.md
// §7) if id is out of range.
func (g *Graph) Node(id NodeId) *Node {
	g.mustValid(id)
	return g.nodes[id]
}

func (g *Graph) mustValid(id NodeId) {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(&GraphConstructionError{NodeID: id, Message: "invalid NodeId"})
	}
}

// FreezeOption configures Freeze.
type FreezeOption func(*Graph)

// WithCycleCheck enables a DFS-based cycle check over both data and
// dependency edges at Freeze time. Off by default: the reference C++ never
// checks and treats cycles as entirely the caller's responsibility (spec.md
// §9 Open Question 5 / §4.1).
func WithCycleCheck(enabled bool) FreezeOption {
	return func(g *Graph) { g.checkCyc = enabled }
}

// Freeze finalizes the graph's topology: it records the terminal-node count
// (needed so Engine.Start can increment the outstanding-instances counter
// by the right amount for multi-sink graphs — see SPEC_FULL.md §9 item 1)
// and, if requested, rejects cyclic graphs. Once frozen the graph may be
// Cloned and run; further AddInstruction/Connect/DeclareDependency calls
// are still technically possible but unsupported once an Engine has
// started using it, matching spec.md §3's "topology is append-only during
// construction; once an instance is launched, the graph is cloned and the
// clone is immutable."
func (g *Graph) Freeze(opts ...FreezeOption) error {
	for _, opt := range opts {
		opt(g)
	}
	if g.checkCyc {
		if cyc := g.findCycle(); cyc {
			return ErrGraphCycle
		}
	}

	hasDataIn := make(map[NodeId]bool)
	for _, n := range g.nodes {
		for e := range n.outEdges {
			hasDataIn[e.dst] = true
		}
	}

	count := 0
	hasEntry := false
	for _, n := range g.nodes {
		if n.Terminal() {
			count++
		}
		if n.inDegree == 0 && !hasDataIn[n.id] {
			hasEntry = true
		}
	}
	if len(g.nodes) > 0 && !hasEntry {
		return ErrNoStartNode
	}
	g.terminalCount = count
	g.frozen = true
	return nil
}

// TerminalCount returns the number of terminal nodes recorded at Freeze
// time. Panics if called before Freeze.
func (g *Graph) TerminalCount() int {
	if !g.frozen {
		panic("mdf: TerminalCount called before Freeze")
	}
	return g.terminalCount
}

// findCycle runs a recursive DFS over the union of data and dependency
// edges, grounded on the teacher's hasCycle helper in
// internal/infrastructure/graph/engine.go (there applied to an
// execution-plan adjacency list; here to the structural Node/outEdges
// model directly).
func (g *Graph) findCycle() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.nodes))

	var visit func(id NodeId) bool
	visit = func(id NodeId) bool {
		color[id] = gray
		n := g.nodes[id]
		for e := range n.outEdges {
			switch color[e.dst] {
			case gray:
				return true
			case white:
				if visit(e.dst) {
					return true
				}
			}
		}
		for dep := range n.dependents {
			switch color[dep] {
			case gray:
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, n := range g.nodes {
		if color[n.id] == white {
			if visit(n.id) {
				return true
			}
		}
	}
	return false
}

// Clone deep-copies nodes and their edge/dependent sets; instruction bodies
// are cheaply re-wrapped via Instruction.Clone (pure closures, no mutable
// state to duplicate). Mirrors mdf::Graph's copy constructor.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		frozen:        g.frozen,
		checkCyc:      g.checkCyc,
		terminalCount: g.terminalCount,
		nodes:         make([]*Node, len(g.nodes)),
	}
	for i, n := range g.nodes {
		clone.nodes[i] = n.clone()
	}
	return clone
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(nodes=%d, frozen=%v)", len(g.nodes), g.frozen)
}
