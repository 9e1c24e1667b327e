package main

import (
	"os"

	"github.com/joho/godotenv"

	"garden-planner/internal/cli"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
