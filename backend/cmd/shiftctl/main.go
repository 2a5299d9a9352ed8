// Command shiftctl is the operator CLI: schema migrations, development
// tokens and a manual run of the swap expiry sweep.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
