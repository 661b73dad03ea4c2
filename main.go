package main

import (
	"fmt"
	"os"

	"github.com/templatehooks/spinup/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the spinup post-generation setup hook.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
