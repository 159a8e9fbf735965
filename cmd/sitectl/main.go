// Command sitectl is the operator CLI: it inspects the content API the way
// the website sees it and manages the local contact inbox.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
