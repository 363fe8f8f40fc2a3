// Command setstate runs the state cell demos.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/setstate/cmd/setstate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
