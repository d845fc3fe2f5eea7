// Package main provides planctl, a command-line front end to the travel plan
// composer. It needs no database; provider keys come from the environment or
// a .env file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(defaultComposer).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
