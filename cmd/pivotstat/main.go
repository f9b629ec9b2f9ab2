package main

import (
	"fmt"
	"os"

	"github.com/Kroner-bit/pivot-stat/internal/commands"
	"github.com/Kroner-bit/pivot-stat/internal/logger"
)

func main() {
	err := commands.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pivotstat: %v\n", err)
		os.Exit(1)
	}
}
