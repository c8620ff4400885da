package main

import (
	"os"

	"github.com/anoncampus/campusforum/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
