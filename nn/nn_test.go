package nn

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/guigzzz/micrograd-go/engine"
	"gonum.org/v1/gonum/floats"
)

var xorOneHot = []struct {
	x []float64
	y []float64
}{
	{x: []float64{1, 0}, y: []float64{0, 1}},
	{x: []float64{0, 1}, y: []float64{0, 1}},
	{x: []float64{1, 1}, y: []float64{1, 0}},
	{x: []float64{0, 0}, y: []float64{1, 0}},
}

func xorAccuracy(mlp *MultiLayerPerceptron) float64 {
	correct := 0
	for _, ex := range xorOneHot {
		pred := mlp.Forward(ex.x)
		if floats.MaxIdx(pred) == floats.MaxIdx(ex.y) {
			correct++
		}
	}
	return float64(correct) / float64(len(xorOneHot))
}

func trainXor(seed int64, epochs int) *MultiLayerPerceptron {
	r := rand.New(rand.NewSource(seed))
	mlp := NewMLP([]int{2, 2, 2}, r)
	opt := &engine.SGD{LearningRate: 0.1}

	order := []int{0, 1, 2, 3}
	for epoch := 0; epoch < epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, i := range order {
			ex := xorOneHot[i]
			pred := mlp.Forward(ex.x)
			grads := SquaredErrorGradient(ex.y, pred)

			mlp.ZeroGrads()
			mlp.Backward(grads)
			mlp.UpdateWeights(opt)
		}
		if epoch%50 == 0 && xorAccuracy(mlp) == 1 {
			break
		}
	}
	return mlp
}

func TestMLPXor(t *testing.T) {
	// Relu nets occasionally start dead; a couple of restarts keeps the
	// test deterministic without hiding real regressions.
	for _, seed := range []int64{12345, 6789, 42} {
		mlp := trainXor(seed, 2000)
		if xorAccuracy(mlp) == 1 {
			return
		}
		t.Logf("seed %d did not reach full accuracy", seed)
	}
	t.Fatalf("MLP failed to learn XOR with every seed")
}

func TestForwardDeterministic(t *testing.T) {
	mlp := NewMLP([]int{3, 4, 2}, rand.New(rand.NewSource(1)))

	x := []float64{0.1, -0.2, 0.7}
	first := mlp.Forward(x)
	second := mlp.Forward(x)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated forward differs; diff (-got +want)\n%s", diff)
	}
	if len(first) != 2 {
		t.Fatalf("got %d outputs, want 2", len(first))
	}
}

func TestForwardLengthMismatchPanics(t *testing.T) {
	mlp := NewMLP([]int{2, 1}, rand.New(rand.NewSource(1)))

	defer func() {
		if recover() == nil {
			t.Fatalf("Forward with wrong feature count did not panic")
		}
	}()
	mlp.Forward([]float64{1, 2, 3})
}

func TestBackwardLengthMismatchPanics(t *testing.T) {
	mlp := NewMLP([]int{2, 3}, rand.New(rand.NewSource(1)))
	mlp.Forward([]float64{1, 2})

	defer func() {
		if recover() == nil {
			t.Fatalf("Backward with wrong gradient count did not panic")
		}
	}()
	mlp.Backward([]float64{1})
}

func TestSquaredError(t *testing.T) {
	y := []float64{0, 1}
	pred := []float64{0.25, 0.5}

	if got := SquaredErrorLoss(y, pred); got != 0.25*0.25+0.5*0.5 {
		t.Errorf("loss: got %v", got)
	}
	if diff := cmp.Diff(SquaredErrorGradient(y, pred), []float64{0.25, -0.5}); diff != "" {
		t.Errorf("gradient; diff (-got +want)\n%s", diff)
	}
}

func TestOneHot(t *testing.T) {
	if diff := cmp.Diff(OneHot(2, 4), []float64{0, 0, 1, 0}); diff != "" {
		t.Errorf("wrong encoding; diff (-got +want)\n%s", diff)
	}
}
