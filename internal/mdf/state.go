package mdf

import "sync"

// instructionState is the per-node, per-instance bookkeeping described in
// spec.md §3: InstructionState. It is created lazily, on first write,
// inside a graphHandle.
type instructionState struct {
	mu                    sync.Mutex
	fired                 bool
	resolvedDependencies  uint
	tokens                map[string]Token
}

func newInstructionState() *instructionState {
	return &instructionState{tokens: make(map[string]Token)}
}

// graphHandle is one streamer-step's worth of execution context: a cloned
// Graph plus a fresh, sharded state map. Mirrors mdf::Mdf<D>::GraphHandle.
type graphHandle struct {
	instanceID uint64
	graph      *Graph
	states     *ShardedMap[NodeId, *instructionState]
}

func newGraphHandle(instanceID uint64, g *Graph) *graphHandle {
	return &graphHandle{
		instanceID: instanceID,
		graph:      g,
		states:     NewShardedMap[NodeId, *instructionState](11, nodeIDHash),
	}
}

func (gh *graphHandle) stateFor(id NodeId) *instructionState {
	if s, ok := gh.states.Get(id); ok {
		return s
	}
	s, _ := gh.states.Insert(id, newInstructionState())
	return s
}

// setToken records a token at (id, param). A second write to the same key
// before id fires silently overwrites, per spec.md §9 Open Question 3 —
// callers that care are expected to detect this via MetricsSink.PortOverwrite.
func (gh *graphHandle) setToken(id NodeId, param string, tok Token, overwritten *bool) {
	st := gh.stateFor(id)
	st.mu.Lock()
	if _, exists := st.tokens[param]; exists && overwritten != nil {
		*overwritten = true
	}
	st.tokens[param] = tok
	st.mu.Unlock()
}

// bumpDependency records that one of id's dependency sources has fired.
func (gh *graphHandle) bumpDependency(id NodeId) {
	st := gh.stateFor(id)
	st.mu.Lock()
	st.resolvedDependencies++
	st.mu.Unlock()
}

// tryFire evaluates the three-part fireability predicate from spec.md §4.3
// atomically under the state's own lock, flipping fired to true on success.
// It returns true exactly once per node per instance.
func (gh *graphHandle) tryFire(id NodeId) bool {
	node := gh.graph.Node(id)
	st := gh.stateFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.fired {
		return false
	}
	if st.resolvedDependencies != node.inDegree {
		return false
	}
	if len(st.tokens) != len(node.instruction.Params()) {
		return false
	}
	st.fired = true
	return true
}

// snapshotTokens copies the current token map under lock, so Execute can
// read a consistent view even though the map itself is never touched again
// for this node within this instance (fired is already true by the time
// Execute runs).
func (gh *graphHandle) snapshotTokens(id NodeId) map[string]Token {
	st := gh.stateFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := make(map[string]Token, len(st.tokens))
	for k, v := range st.tokens {
		cp[k] = v
	}
	return cp
}
