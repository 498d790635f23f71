package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bdi.dev/engine/engine"
	"bdi.dev/engine/handle"
)

// newUnknownTemplateCmd implements spec §8 scenario 5: creating an agent
// from an unregistered template returns a nil handle and permanently
// trips the engine's critical bootstrap error, so Start refuses to run.
func newUnknownTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unknown-template",
		Short: "createAgent on an unknown template refuses engine.start()",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.New(engine.Options{})
			a := eng.CreateAgent("UnknownTemplate", "ghost", handle.Handle{})
			fmt.Printf("agent handle nil: %v (want true)\n", a == nil)

			err := eng.Start(0)
			fmt.Printf("engine.start() error: %v\n", err)
			fmt.Printf("getStatus(): %d (want != 0)\n", eng.GetStatus())
			return nil
		},
	}
}
