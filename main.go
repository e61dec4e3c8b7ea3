package main

import (
	"context"
	"os"

	"github.com/jeni-ai/jeni/pkg/cli"
)

func main() {
	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		os.Exit(err.Code)
	}
}
