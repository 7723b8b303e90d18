// Package main provides the entrypoint for aws-image-optimizer.
package main

import (
	"os"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
