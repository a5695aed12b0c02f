package main

import (
	"context"
	"fmt"

	"github.com/duragraph/mdf/internal/mdf"
	"github.com/duragraph/mdf/internal/streamers"
)

// printingDrainer writes every terminal token to mdf.Stdout, the teacher's
// plain-console-chatter idiom rather than structured logging — appropriate
// here since a CLI run's whole point is to be read by a human.
type printingDrainer struct{}

func (printingDrainer) Accept(_ context.Context, nodeID mdf.NodeId, tok mdf.Token) error {
	mdf.Stdout.Println(fmt.Sprintf("node %d -> %v", nodeID, tok.Value()))
	return nil
}

func runExample(ctx context.Context, ex example, workers int) error {
	engine, err := mdf.New(ex.graph, workers, printingDrainer{})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	mdf.Stdout.Println("Starting threads...")
	_, err = engine.Start(ctx, streamers.NewStatic(ex.batches))
	mdf.Stdout.Println("Finished.")
	return err
}
