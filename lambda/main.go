// Package main provides the Lambda@Edge bootstrap. Lambda@Edge functions cannot carry environment
// variables, so the binary always runs the lambda command with its built-in defaults and an
// optional config.yaml shipped next to it.
package main

import (
	"os"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/cmd"
)

func main() {
	root := cmd.New()
	root.SetArgs(append([]string{"lambda"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
