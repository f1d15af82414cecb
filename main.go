package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"tearpay/cmd"
)

func main() {
	// A .env file is optional; configuration also comes from TEARPAY_* variables.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
