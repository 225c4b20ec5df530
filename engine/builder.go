package engine

// Workspace owns the id allocator and the node arena for one family of
// fragments.  All fragments that may be combined or frozen together
// must come from the same workspace.  A workspace is single-writer:
// concurrent builders must each use their own.
type Workspace struct {
	ids   idAllocator
	nodes []Node
}

func NewWorkspace() *Workspace {
	return &Workspace{}
}

func (ws *Workspace) push(n Node) NodeID {
	id := ws.ids.Next()
	ws.nodes = append(ws.nodes, n)
	return id
}

// Input allocates a fresh externally-supplied scalar and returns a
// fragment rooted at it.
func (ws *Workspace) Input() Fragment {
	return Fragment{ws: ws, root: ws.push(Node{Kind: KindInput})}
}

// Immediate allocates a node holding a constant scalar.
func (ws *Workspace) Immediate(v float64) Fragment {
	return Fragment{ws: ws, root: ws.push(Node{Kind: KindImmediate, Immediate: v})}
}

// Fragment is an immutable handle on one sub-expression: the workspace
// holding its nodes plus the id of its root.  Fragments are cheap to
// copy; every combinator strictly adds nodes and never mutates an
// existing one, so a fragment can feed any number of larger
// expressions.
type Fragment struct {
	ws   *Workspace
	root NodeID
}

// Root returns the id of the fragment's root node.
func (f Fragment) Root() NodeID {
	return f.root
}

func (f Fragment) combine(op Op, g Fragment) Fragment {
	if f.ws != g.ws {
		panic("engine: cannot combine fragments from different workspaces")
	}
	root := f.ws.push(Node{Kind: KindOperation, Op: op, Left: f.root, Right: g.root})
	return Fragment{ws: f.ws, root: root}
}

func (f Fragment) Add(g Fragment) Fragment { return f.combine(Add, g) }
func (f Fragment) Sub(g Fragment) Fragment { return f.combine(Sub, g) }
func (f Fragment) Mul(g Fragment) Fragment { return f.combine(Mul, g) }
func (f Fragment) Div(g Fragment) Fragment { return f.combine(Div, g) }
func (f Fragment) Pow(g Fragment) Fragment { return f.combine(Pow, g) }

// Scalar variants allocate an immediate for the right operand.

func (f Fragment) AddScalar(v float64) Fragment { return f.combine(Add, f.ws.Immediate(v)) }
func (f Fragment) SubScalar(v float64) Fragment { return f.combine(Sub, f.ws.Immediate(v)) }
func (f Fragment) MulScalar(v float64) Fragment { return f.combine(Mul, f.ws.Immediate(v)) }
func (f Fragment) DivScalar(v float64) Fragment { return f.combine(Div, f.ws.Immediate(v)) }
func (f Fragment) PowScalar(v float64) Fragment { return f.combine(Pow, f.ws.Immediate(v)) }

// Relu rectifies the fragment.  It is represented uniformly as a binary
// operation whose right operand is a zero immediate.
func (f Fragment) Relu() Fragment {
	return f.combine(Relu, f.ws.Immediate(0))
}

// Neg negates the fragment as 0 - f.  The Sub node this introduces has
// no backward rule, so a graph containing Neg can be evaluated but not
// differentiated.
func (f Fragment) Neg() Fragment {
	return f.ws.Immediate(0).combine(Sub, f)
}
