// The main package for the landing-preview executable.
package main

import (
	"github.com/JakeFAU/landing-preview/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
