package main

import (
	"context"
	"flag"
	"math/rand"

	"github.com/google/subcommands"
	"github.com/guigzzz/micrograd-go/nn"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

// XorCommand trains a tiny network on the XOR truth table.  It is the
// quickest end-to-end check that forward, backward and the optimiser
// agree.
type XorCommand struct {
	epochs       int
	hidden       int
	learningRate float64
	optimiser    string
	seed         int64

	cpuProfileFile string
}

var _ subcommands.Command = (*XorCommand)(nil)

func (*XorCommand) Name() string {
	return "xor"
}

func (*XorCommand) Synopsis() string {
	return "Train a small network on the XOR truth table"
}

func (*XorCommand) Usage() string {
	return ``
}

func (c *XorCommand) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.epochs, "epochs", 1000, "Number of training epochs")
	f.IntVar(&c.hidden, "hidden", 2, "Hidden layer width")
	f.Float64Var(&c.learningRate, "learning-rate", 0.1, "SGD learning rate")
	f.StringVar(&c.optimiser, "optimiser", "sgd", "Optimiser to use (sgd or adam)")
	f.Int64Var(&c.seed, "seed", 12345, "Weight initialisation seed")

	f.StringVar(&c.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
}

func (c *XorCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		klog.Errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *XorCommand) executeErr(ctx context.Context) error {
	stop, err := startCPUProfile(c.cpuProfileFile)
	if err != nil {
		return err
	}
	defer stop()

	xs := [][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}}
	labels := []int{1, 1, 0, 0}

	r := rand.New(rand.NewSource(c.seed))
	mlp := nn.NewMLP([]int{2, c.hidden, 2}, r)

	opt, err := newOptimiser(c.optimiser, c.learningRate, mlp.NumParameters())
	if err != nil {
		return err
	}

	order := []int{0, 1, 2, 3}
	for epoch := 0; epoch < c.epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		accs := make([]float64, 0, len(order))
		losses := make([]float64, 0, len(order))
		for _, i := range order {
			y := nn.OneHot(labels[i], 2)
			pred := mlp.Forward(xs[i])

			grads := nn.SquaredErrorGradient(y, pred)
			mlp.ZeroGrads()
			mlp.Backward(grads)
			mlp.UpdateWeights(opt)

			losses = append(losses, nn.SquaredErrorLoss(y, pred))
			acc := 0.0
			if floats.MaxIdx(pred) == labels[i] {
				acc = 1
			}
			accs = append(accs, acc)
		}

		if epoch%100 == 0 {
			klog.Infof("epoch %d acc=%.2f loss=%f", epoch, stat.Mean(accs, nil), stat.Mean(losses, nil))
		}
	}

	correct := 0
	for i, x := range xs {
		if floats.MaxIdx(mlp.Forward(x)) == labels[i] {
			correct++
		}
	}
	klog.Infof("final accuracy %d/%d", correct, len(xs))

	return nil
}
