package engine

import (
	"fmt"
	"math"
)

// Optimiser turns accumulated gradients into in-place value updates.
// Implementations must not reset gradients; that is ZeroGrads's job.
type Optimiser interface {
	Optimise(data []Data)
}

// SGD applies a plain gradient-descent step.
type SGD struct {
	LearningRate float64
}

var _ Optimiser = (*SGD)(nil)

func (o *SGD) Optimise(data []Data) {
	for i := range data {
		data[i].Value -= o.LearningRate * data[i].Gradient
	}
}

// Adam maintains per-slot first and second moment accumulators with
// bias-corrected steps.  The accumulators are positionally indexed and
// must be sized to Graph.NumParameters of the graph being trained.
type Adam struct {
	alpha   float64
	beta1   float64
	beta2   float64
	epsilon float64

	m []float64
	v []float64
	t float64
}

var _ Optimiser = (*Adam)(nil)

// NewAdam builds an Adam optimiser for numParams data slots with the
// usual defaults (alpha=0.001, beta1=0.9, beta2=0.999, epsilon=1e-8).
func NewAdam(numParams int) *Adam {
	return &Adam{
		alpha:   0.001,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-8,
		m:       make([]float64, numParams),
		v:       make([]float64, numParams),
	}
}

func (o *Adam) Optimise(data []Data) {
	if len(data) != len(o.m) {
		panic(fmt.Sprintf("engine: Adam sized for %d parameters, got %d", len(o.m), len(data)))
	}

	o.t++
	alphaT := o.alpha * math.Sqrt(1-math.Pow(o.beta2, o.t)) / (1 - math.Pow(o.beta1, o.t))

	for i := range data {
		grad := data[i].Gradient
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*grad
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*grad*grad
		data[i].Value -= alphaT * o.m[i] / (math.Sqrt(o.v[i]) + o.epsilon)
	}
}
