package main

import (
	"github.com/joho/godotenv"

	"github.com/tally-bridge/backend/cmd"
)

func main() {
	// A missing .env file is fine, the environment may be set elsewhere
	_ = godotenv.Load()

	cmd.Execute()
}
