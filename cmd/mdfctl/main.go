// Command mdfctl builds one of a handful of canned example graphs
// in-process and runs it to completion against a streamers.Static driver,
// printing terminal tokens via
// mdf.Stdout — a single-process way to exercise the engine without running
// mdfd, grounded on the teacher's CLI subcommand layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "mdfctl",
		Short: "Run canned mdf example graphs to completion",
	}

	var workers int
	root.PersistentFlags().IntVar(&workers, "workers", 4, "number of engine workers")

	examples := []struct {
		use   string
		short string
		build func() example
	}{
		{"linear", "A -> B chain", linearExample},
		{"diamond", "A -> {B, C} -> D diamond", diamondExample},
		{"sideeffect", "dependency edge alongside a data edge", sideEffectExample},
		{"matvec", "matrix-vector product via MatrixRow", matvecExample},
		{"sine", "sine of several angles, one instance each", sineExample},
		{"mandelbrot", "escape-time tree over one image block", mandelbrotExample},
		{"fanout", "one source fanning into several independent sinks", fanoutExample},
	}

	for _, ex := range examples {
		ex := ex
		root.AddCommand(&cobra.Command{
			Use:   ex.use,
			Short: ex.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runExample(cmd.Context(), ex.build(), workers)
			},
		})
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
