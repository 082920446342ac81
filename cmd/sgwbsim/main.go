// Command sgwbsim synthesizes the channel cross-spectral density of an
// anisotropic stochastic gravitational-wave background.
//
// Usage:
//
//	sgwbsim run [flags]
//	sgwbsim pixels [nside ...]
//
// Examples:
//
//	sgwbsim run --nside 8 --fmin 1e-3 --fmax 1e-1 --fn 16
//	sgwbsim run --config run.yaml --trace --metrics-file sgwb.prom
//	sgwbsim pixels --list 1
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sgwbsim",
		Short:         "Synthesize anisotropic SGWB signals for space-based detectors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newPixelsCmd())
	return root
}
