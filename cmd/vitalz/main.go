// Command vitalz replays recorded page sessions through the vitalz tracker
// and prints the resulting spans.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
