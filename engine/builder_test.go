package engine

import (
	"testing"
)

func TestAllocatorMonotonic(t *testing.T) {
	var ids idAllocator
	prev := ids.Next()
	for i := 0; i < 1000; i++ {
		id := ids.Next()
		if id <= prev {
			t.Fatalf("id %d issued after %d", id, prev)
		}
		prev = id
	}
}

func TestOperandIDsPrecedeParent(t *testing.T) {
	ws := NewWorkspace()

	a := ws.Input()
	b := ws.Input()

	// Two independently grown fragments sharing the workspace, merged
	// at the end.
	left := a.Add(b).MulScalar(3).Relu()
	right := a.Mul(b).AddScalar(1).Add(left)
	merged := left.Mul(right).Add(a.Neg())

	for id, n := range ws.nodes {
		if n.Kind != KindOperation {
			continue
		}
		if int(n.Left) >= id || int(n.Right) >= id {
			t.Errorf("node %d has operands %d, %d; want both < %d", id, n.Left, n.Right, id)
		}
	}

	if int(merged.Root()) != len(ws.nodes)-1 {
		t.Errorf("merged root is %d, want last allocated id %d", merged.Root(), len(ws.nodes)-1)
	}
}

func TestCombinatorsNeverMutate(t *testing.T) {
	ws := NewWorkspace()
	a := ws.Input()

	before := len(ws.nodes)
	want := ws.nodes[a.Root()]

	a.AddScalar(1)
	a.Relu()
	a.Add(ws.Immediate(2))

	if got := ws.nodes[a.Root()]; got != want {
		t.Errorf("combining mutated an existing node: got %+v, want %+v", got, want)
	}
	if len(ws.nodes) <= before {
		t.Errorf("combinators allocated no nodes")
	}
}

func TestCombineWorkspaceMismatchPanics(t *testing.T) {
	a := NewWorkspace().Input()
	b := NewWorkspace().Input()

	defer func() {
		if recover() == nil {
			t.Fatalf("combining fragments from different workspaces did not panic")
		}
	}()
	a.Add(b)
}
