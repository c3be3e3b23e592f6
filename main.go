package main

import (
	"os"

	"github.com/newhook/playlog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
