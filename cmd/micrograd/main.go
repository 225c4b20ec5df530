// Command micrograd trains small feed-forward networks with the scalar
// autodiff engine.
//
// To sanity-check on XOR: `go run ./cmd/micrograd xor`
//
// To train a digit classifier: `go run ./cmd/micrograd train --data-file=mnist.parquet`
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&XorCommand{}, "")
	subcommands.Register(&TrainCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
