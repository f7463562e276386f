package main

import (
	"seoscope/cmd/cmd"
	"seoscope/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
