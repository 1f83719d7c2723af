package db

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
)

// SetupTestDB creates an isolated in-memory SQLite gateway with the schema applied.
func SetupTestDB() (*Gateway, error) {
	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared", uuid.NewString())
	g, err := newGateway(sqlite.Open(dsn), true)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := g.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return g, nil
}

// CleanupTestDB closes the test database, discarding its contents.
func CleanupTestDB(g *Gateway) {
	if err := g.Close(); err != nil {
		log.Printf("Failed to close test database: %v", err)
	}
}
