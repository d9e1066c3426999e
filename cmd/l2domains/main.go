// Command l2domains computes the Layer-2 broadcast domains of a network
// snapshot from device configurations and cabling.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
