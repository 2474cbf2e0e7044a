package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/covtree/cmd/covtree/app"
)

func main() {
	if err := app.NewCovtreeCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
