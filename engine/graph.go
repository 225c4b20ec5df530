package engine

import (
	"fmt"
	"math"
)

// Data is the per-node runtime state of a frozen graph.
type Data struct {
	Value    float64
	Gradient float64
}

// Seed is an upstream gradient injected at an output node to start
// backpropagation.
type Seed struct {
	ID       NodeID
	Gradient float64
}

// UnsupportedBackwardError is the panic value raised when a backward
// sweep reaches an operation the engine does not differentiate.  The
// engine differentiates only Add, Mul and Relu; a loss or activation
// needing Sub, Div or Pow must be computed outside the graph and fed
// back through a seed gradient.
type UnsupportedBackwardError struct {
	ID NodeID
	Op Op
}

func (e *UnsupportedBackwardError) Error() string {
	return fmt.Sprintf("engine: no backward rule for %v (node %d)", e.Op, e.ID)
}

// Graph is the frozen, executable form of one or more fragments: every
// node reachable from the designated roots, laid out as a dense array
// indexed by id, with a parallel Data array holding per-node value and
// gradient.  A graph holds no reference back to its workspace.
type Graph struct {
	nodes   []Node
	alive   []bool
	data    []Data
	outputs []NodeID
}

// Freeze merges the nodes reachable from every given fragment's root,
// deduplicated by id, into one executable graph.  The fragments must
// share a workspace; their roots become the graph's designated outputs,
// in the given order.
func Freeze(fragments ...Fragment) *Graph {
	if len(fragments) == 0 {
		panic("engine: Freeze requires at least one fragment")
	}

	ws := fragments[0].ws
	maxID := NodeID(0)
	outputs := make([]NodeID, len(fragments))
	for i, f := range fragments {
		if f.ws != ws {
			panic("engine: cannot freeze fragments from different workspaces")
		}
		outputs[i] = f.root
		if f.root > maxID {
			maxID = f.root
		}
	}

	n := int(maxID) + 1
	nodes := make([]Node, n)
	copy(nodes, ws.nodes[:n])

	// Operand ids always precede their parent's id, so one descending
	// scan marks everything reachable from the roots.
	alive := make([]bool, n)
	for _, root := range outputs {
		alive[root] = true
	}
	for id := n - 1; id >= 0; id-- {
		if !alive[id] || nodes[id].Kind != KindOperation {
			continue
		}
		alive[nodes[id].Left] = true
		alive[nodes[id].Right] = true
	}

	data := make([]Data, n)
	for id := range nodes {
		if alive[id] && nodes[id].Kind == KindImmediate {
			data[id].Value = nodes[id].Immediate
		}
	}

	return &Graph{nodes: nodes, alive: alive, data: data, outputs: outputs}
}

// Outputs returns the designated output roots, in freeze order.
func (g *Graph) Outputs() []NodeID {
	out := make([]NodeID, len(g.outputs))
	copy(out, g.outputs)
	return out
}

func (g *Graph) checkID(id NodeID) {
	if id < 0 || int(id) >= len(g.nodes) || !g.alive[id] {
		panic(fmt.Sprintf("engine: node %d is not part of the graph", id))
	}
}

// SetInput writes the value an input node will present during the next
// evaluation.  Panics if id does not refer to an input node.
func (g *Graph) SetInput(id NodeID, v float64) {
	g.checkID(id)
	if g.nodes[id].Kind != KindInput {
		panic(fmt.Sprintf("engine: node %d is not an input", id))
	}
	g.data[id].Value = v
}

// Evaluate recomputes every operation node in one ascending sweep and
// returns the values of the requested outputs, in the given order.
// Ascending id order is a topological order, so both operands of an
// operation node are always computed earlier in the same sweep.
func (g *Graph) Evaluate(outputs []NodeID) []float64 {
	for _, id := range outputs {
		g.checkID(id)
	}

	for id := range g.nodes {
		n := &g.nodes[id]
		if !g.alive[id] || n.Kind != KindOperation {
			continue
		}
		lv := g.data[n.Left].Value
		rv := g.data[n.Right].Value

		var v float64
		switch n.Op {
		case Add:
			v = lv + rv
		case Sub:
			v = lv - rv
		case Mul:
			v = lv * rv
		case Div:
			v = lv / rv
		case Pow:
			v = math.Pow(lv, rv)
		case Relu:
			if lv > 0 {
				v = lv
			}
		default:
			panic(fmt.Sprintf("engine: unknown operation %v", n.Op))
		}
		g.data[id].Value = v
	}

	out := make([]float64, len(outputs))
	for i, id := range outputs {
		out[i] = g.data[id].Value
	}
	return out
}

// Backward adds each seed gradient into its node, then distributes
// gradients to operands in one descending sweep.  Contributions always
// accumulate, never overwrite: a node feeding several parents (or
// seeded several times) sums what it receives.  Only Add, Mul and Relu
// have backward rules; sweeping over a live Sub, Div or Pow node panics
// with an *UnsupportedBackwardError.
func (g *Graph) Backward(seeds []Seed) {
	for _, s := range seeds {
		g.checkID(s.ID)
		g.data[s.ID].Gradient += s.Gradient
	}

	for id := len(g.nodes) - 1; id >= 0; id-- {
		n := &g.nodes[id]
		if !g.alive[id] || n.Kind != KindOperation {
			continue
		}
		grad := g.data[id].Gradient
		lv := g.data[n.Left].Value
		rv := g.data[n.Right].Value

		switch n.Op {
		case Add:
			g.data[n.Left].Gradient += grad
			g.data[n.Right].Gradient += grad
		case Mul:
			g.data[n.Left].Gradient += rv * grad
			g.data[n.Right].Gradient += lv * grad
		case Relu:
			// The right operand is the constant zero immediate and
			// receives nothing.
			if lv > 0 {
				g.data[n.Left].Gradient += grad
			}
		default:
			panic(&UnsupportedBackwardError{ID: NodeID(id), Op: n.Op})
		}
	}
}

// ZeroGrads resets every node's gradient.  Call once per training step
// before Backward, else gradients accumulate across steps.
func (g *Graph) ZeroGrads() {
	for i := range g.data {
		g.data[i].Gradient = 0
	}
}

// NumParameters reports how many Data slots the optimiser iterates
// over.  The enumeration convention is all nodes: it matches exactly
// what UpdateWeights hands the optimiser, so positionally-indexed
// optimiser state stays aligned.
func (g *Graph) NumParameters() int {
	return len(g.data)
}

// UpdateWeights hands the full Data array to the optimiser, which
// mutates values in place.  Only immediate nodes keep their new value;
// input and operation slots are overwritten by the next SetInput or
// Evaluate.
func (g *Graph) UpdateWeights(opt Optimiser) {
	opt.Optimise(g.data)
}
