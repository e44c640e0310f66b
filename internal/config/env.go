package config

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles are read in priority order; a variable set by an earlier file or by
// the process environment is never overwritten.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads every env file that exists and returns their names.
func loadEnvFiles() ([]string, error) {
	var loaded []string
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
