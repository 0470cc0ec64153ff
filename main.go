// Package main provides the entrypoint for convai-webhook.
package main

import (
	"fmt"
	"os"

	"github.com/isometry/convai-webhook/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
