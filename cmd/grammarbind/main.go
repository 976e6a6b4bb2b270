// grammarbind resolves, builds, and loads a tree-sitter grammar's native
// library, the same way the grammarbind package does at runtime.
package main

import (
	"os"

	"github.com/corey/grammarbind/cmd/grammarbind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
