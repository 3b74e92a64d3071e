// Package main is the entry point for the layercraft packet crafting tool.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/layercraft/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
