package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := Run(os.Args[1:]); err != nil {
		slog.Error("campusmap", "err", err)
		os.Exit(1)
	}
}
