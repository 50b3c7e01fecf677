package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env and then .env.local from dir, if present.
// Variables already set in the process environment win over .env, while
// .env.local overrides both.
func LoadDotEnv(dir string) error {
	base := filepath.Join(dir, ".env")
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("load %s: %w", base, err)
		}
	}
	local := filepath.Join(dir, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("load %s: %w", local, err)
		}
	}
	return nil
}
