// Package engine implements a scalar reverse-mode automatic
// differentiation engine.  Expressions are built as immutable fragments
// over a shared workspace, frozen into a dense id-indexed graph, and
// then evaluated and differentiated with two linear array sweeps.
package engine

// Op identifies the binary operation computed by an operation node.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Pow
	Relu
)

func (op Op) String() string {
	switch op {
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Pow:
		return "Pow"
	case Relu:
		return "Relu"
	default:
		return "Unknown"
	}
}

// NodeID is a dense handle for one graph node.  Ids are issued
// monotonically, and an operation node is always allocated after both
// of its operands, so an operation node's operand ids are strictly less
// than its own id.  Ascending id order is therefore a valid topological
// order of the whole graph.
type NodeID int

// Kind discriminates the node payload.
type Kind int

const (
	// KindInput is an externally supplied scalar, written per
	// evaluation through Graph.SetInput.
	KindInput Kind = iota

	// KindImmediate is a scalar fixed at construction time.  Trainable
	// parameters are immediates whose stored value the optimiser
	// mutates in place.
	KindImmediate

	// KindOperation applies Op to the values of two earlier nodes.
	KindOperation
)

// Node is one vertex of the expression graph.  The fields beyond Kind
// are meaningful only for the matching kind.
type Node struct {
	Kind Kind

	// Operation nodes.
	Op          Op
	Left, Right NodeID

	// Immediate nodes.
	Immediate float64
}

// idAllocator issues strictly increasing node ids.  It must be shared,
// not copied, by every fragment that may later be combined; the
// workspace owns the single instance.
type idAllocator struct {
	next NodeID
}

func (a *idAllocator) Next() NodeID {
	id := a.next
	a.next++
	return id
}
