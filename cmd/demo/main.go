package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "demo",
		Short: "runs the literal end-to-end BDI engine scenarios",
	}
	root.AddCommand(
		newStartStopCmd(),
		newPlanSwitchCmd(),
		newRejectNoPlansCmd(),
		newPingPongCmd(),
		newUnknownTemplateCmd(),
		newAttachServiceCmd(),
		newPerform1kGoalsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
