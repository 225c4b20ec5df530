package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/guigzzz/micrograd-go/dataset"
	"github.com/guigzzz/micrograd-go/nn"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

// TrainCommand trains a one-hidden-layer classifier on a columnar digit
// dataset, one example per step.
type TrainCommand struct {
	dataFile  string
	imagesKey string
	labelsKey string

	epochs       int
	hidden       int
	learningRate float64
	optimiser    string
	seed         int64

	cpuProfileFile string
}

var _ subcommands.Command = (*TrainCommand)(nil)

func (*TrainCommand) Name() string {
	return "train"
}

func (*TrainCommand) Synopsis() string {
	return "Train a digit classifier"
}

func (*TrainCommand) Usage() string {
	return ``
}

func (c *TrainCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataFile, "data-file", "mnist.parquet", "Path to the dataset (.parquet or .npz)")
	f.StringVar(&c.imagesKey, "npz-images-key", "x_train.npy", "Image array name inside an npz dataset")
	f.StringVar(&c.labelsKey, "npz-labels-key", "y_train.npy", "Label array name inside an npz dataset")

	f.IntVar(&c.epochs, "epochs", 20, "Number of training epochs")
	f.IntVar(&c.hidden, "hidden", 16, "Hidden layer width")
	f.Float64Var(&c.learningRate, "learning-rate", 0.01, "SGD learning rate")
	f.StringVar(&c.optimiser, "optimiser", "adam", "Optimiser to use (sgd or adam)")
	f.Int64Var(&c.seed, "seed", 12345, "Weight initialisation and shuffle seed")

	f.StringVar(&c.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
}

func (c *TrainCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		klog.Errorf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *TrainCommand) executeErr(ctx context.Context) error {
	stop, err := startCPUProfile(c.cpuProfileFile)
	if err != nil {
		return err
	}
	defer stop()

	digits, err := c.loadDataset()
	if err != nil {
		return fmt.Errorf("while loading dataset: %w", err)
	}
	klog.Infof("loaded %d examples, %d features, %d classes", digits.Len(), digits.Features, digits.Classes)

	r := rand.New(rand.NewSource(c.seed))
	mlp := nn.NewMLP([]int{digits.Features, c.hidden, digits.Classes}, r)
	klog.Infof("network has %d graph nodes", mlp.NumParameters())

	opt, err := newOptimiser(c.optimiser, c.learningRate, mlp.NumParameters())
	if err != nil {
		return err
	}

	for epoch := 0; epoch < c.epochs; epoch++ {
		digits.Shuffle(r)

		accs := make([]float64, 0, digits.Len())
		losses := make([]float64, 0, digits.Len())
		for k := 0; k < digits.Len(); k++ {
			y := nn.OneHot(digits.Labels[k], digits.Classes)
			pred := mlp.Forward(digits.X[k])

			grads := nn.SquaredErrorGradient(y, pred)
			mlp.ZeroGrads()
			mlp.Backward(grads)
			mlp.UpdateWeights(opt)

			losses = append(losses, nn.SquaredErrorLoss(y, pred))
			acc := 0.0
			if floats.MaxIdx(pred) == digits.Labels[k] {
				acc = 1
			}
			accs = append(accs, acc)
		}

		klog.Infof("epoch %d acc=%.3f loss=%f", epoch, stat.Mean(accs, nil), stat.Mean(losses, nil))
	}

	return nil
}

func (c *TrainCommand) loadDataset() (*dataset.Digits, error) {
	switch filepath.Ext(c.dataFile) {
	case ".parquet":
		return dataset.FromParquet(c.dataFile)
	case ".npz":
		return dataset.FromNPZ(c.dataFile, c.imagesKey, c.labelsKey)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", c.dataFile)
	}
}
