package setup

import (
	"testing"

	"github.com/ferdian3456/snapgram/internal/config"
)

func RunMigration(pgURL string, t *testing.T) error {
	t.Log("Running database migrations...")

	err := config.RunMigrations(pgURL)
	if err != nil {
		return err
	}

	t.Log("Database migrations completed successfully")
	return nil
}
