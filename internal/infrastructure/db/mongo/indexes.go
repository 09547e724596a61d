package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureAllIndexes creates the indexes every repository relies on. Called once
// at startup; index creation is idempotent on the server side.
func EnsureAllIndexes(ctx context.Context, db *mongo.Database) error {
	type indexed interface {
		EnsureIndexes(ctx context.Context) error
	}

	repos := map[string]indexed{
		"users":      NewAuthRepository(db),
		"clients":    NewClientRepository(db),
		"proposals":  NewProposalRepository(db),
		"projects":   NewProjectRepository(db),
		"milestones": NewMilestoneRepository(db),
	}
	for name, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", name, err)
		}
	}
	return nil
}
