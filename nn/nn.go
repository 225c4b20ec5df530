// Package nn assembles multi-layer perceptrons out of scalar
// expression fragments.  Each neuron is a weighted sum of its layer
// inputs plus a bias, rectified; weights and biases are immediates the
// optimiser trains in place.
package nn

import (
	"fmt"
	"math/rand"

	"github.com/guigzzz/micrograd-go/engine"
)

// neuron wires one unit over the previous layer: relu(sum w_i*x_i + b),
// with w and b drawn uniformly from [-1, 1).
func neuron(ws *engine.Workspace, inputs []engine.Fragment, r *rand.Rand) engine.Fragment {
	sum := ws.Immediate(uniform(r)).Mul(inputs[0])
	for _, x := range inputs[1:] {
		sum = sum.Add(ws.Immediate(uniform(r)).Mul(x))
	}
	return sum.Add(ws.Immediate(uniform(r))).Relu()
}

func uniform(r *rand.Rand) float64 {
	return r.Float64()*2 - 1
}

// MultiLayerPerceptron is a dense feed-forward network frozen into one
// executable graph.  It keeps the ordered input node ids matching the
// feature vector it is fed, and the ordered output node ids of its
// final layer.
type MultiLayerPerceptron struct {
	inputs  []engine.NodeID
	outputs []engine.NodeID
	graph   *engine.Graph
}

// NewMLP builds a network with the given layer sizes, sizes[0] being
// the feature count and sizes[len-1] the output count.
func NewMLP(sizes []int, r *rand.Rand) *MultiLayerPerceptron {
	if len(sizes) < 2 {
		panic("nn: need at least an input and an output layer size")
	}
	for _, s := range sizes {
		if s <= 0 {
			panic(fmt.Sprintf("nn: invalid layer size %d", s))
		}
	}

	ws := engine.NewWorkspace()

	layer := make([]engine.Fragment, sizes[0])
	inputs := make([]engine.NodeID, sizes[0])
	for i := range layer {
		layer[i] = ws.Input()
		inputs[i] = layer[i].Root()
	}

	for _, size := range sizes[1:] {
		next := make([]engine.Fragment, size)
		for i := range next {
			next[i] = neuron(ws, layer, r)
		}
		layer = next
	}

	graph := engine.Freeze(layer...)
	return &MultiLayerPerceptron{
		inputs:  inputs,
		outputs: graph.Outputs(),
		graph:   graph,
	}
}

// Forward feeds one feature vector and returns the network outputs.
func (mlp *MultiLayerPerceptron) Forward(features []float64) []float64 {
	if len(features) != len(mlp.inputs) {
		panic(fmt.Sprintf("nn: expected %d inputs, got %d", len(mlp.inputs), len(features)))
	}
	for i, id := range mlp.inputs {
		mlp.graph.SetInput(id, features[i])
	}
	return mlp.graph.Evaluate(mlp.outputs)
}

// Backward seeds each output with its upstream loss gradient and
// propagates.  The loss itself is computed outside the graph; see
// SquaredErrorGradient.
func (mlp *MultiLayerPerceptron) Backward(outGrads []float64) {
	if len(outGrads) != len(mlp.outputs) {
		panic(fmt.Sprintf("nn: expected %d output gradients, got %d", len(mlp.outputs), len(outGrads)))
	}
	seeds := make([]engine.Seed, len(outGrads))
	for i, id := range mlp.outputs {
		seeds[i] = engine.Seed{ID: id, Gradient: outGrads[i]}
	}
	mlp.graph.Backward(seeds)
}

func (mlp *MultiLayerPerceptron) ZeroGrads() {
	mlp.graph.ZeroGrads()
}

func (mlp *MultiLayerPerceptron) UpdateWeights(opt engine.Optimiser) {
	mlp.graph.UpdateWeights(opt)
}

func (mlp *MultiLayerPerceptron) NumParameters() int {
	return mlp.graph.NumParameters()
}

// NumOutputs reports the width of the final layer.
func (mlp *MultiLayerPerceptron) NumOutputs() int {
	return len(mlp.outputs)
}
