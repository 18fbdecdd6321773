package main

import (
	"os"

	"github.com/pathways-2/Agent-Chatbot/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
