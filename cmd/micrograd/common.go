package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/guigzzz/micrograd-go/engine"
)

// startCPUProfile begins profiling into path and returns a stop
// function.  An empty path is a no-op.
func startCPUProfile(path string) (stop func(), err error) {
	if path == "" {
		return func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("while creating CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("while starting CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func newOptimiser(name string, learningRate float64, numParams int) (engine.Optimiser, error) {
	switch name {
	case "sgd":
		return &engine.SGD{LearningRate: learningRate}, nil
	case "adam":
		return engine.NewAdam(numParams), nil
	default:
		return nil, fmt.Errorf("unknown optimiser %q (want sgd or adam)", name)
	}
}
