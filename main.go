package main

import (
	"os"

	"github.com/thanhdat24/code-learning/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
