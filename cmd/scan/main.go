package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("scan", "error", err)
		os.Exit(1)
	}
}
