package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"
)

// runEnvCmd prints host information so digests reported from different
// machines can be attributed.
func runEnvCmd(cmd *cobra.Command, args []string) {
	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
		fmt.Printf("  HasASIMD: %v\n", cpu.ARM64.HasASIMD)
		fmt.Printf("  HasFP:    %v\n", cpu.ARM64.HasFP)
		fmt.Printf("  HasSVE:   %v\n", cpu.ARM64.HasSVE)
		fmt.Printf("  HasSVE2:  %v\n", cpu.ARM64.HasSVE2)
		fmt.Printf("  HasSHA3:  %v\n", cpu.ARM64.HasSHA3)
	case "amd64":
		fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
		fmt.Printf("  HasSSE42:   %v\n", cpu.X86.HasSSE42)
		fmt.Printf("  HasAVX2:    %v\n", cpu.X86.HasAVX2)
		fmt.Printf("  HasAVX512F: %v\n", cpu.X86.HasAVX512F)
		fmt.Printf("  HasBMI2:    %v\n", cpu.X86.HasBMI2)
		fmt.Printf("  HasPOPCNT:  %v\n", cpu.X86.HasPOPCNT)
	}
}
