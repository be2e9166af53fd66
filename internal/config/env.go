package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvFiles are tried in order. The first one that loads wins.
var EnvFiles = []string{".env", ".env.local"}

// loadEnvFile loads KEY=VALUE pairs from the first readable env file.
// Variables already present in the process environment are not overwritten.
func loadEnvFile() {
	for _, envPath := range EnvFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", envPath, err)
			continue
		}
		return
	}
}
