// Package main provides a command-line entry point to the resume analysis pipeline.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newPipeline).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
