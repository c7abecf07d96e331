// Package mongo provides the MongoDB implementation of the cash movement journal.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/register-pos/internal/domain/register"
)

const (
	// MovementCollectionName is the name of the cash movement collection in MongoDB
	MovementCollectionName = "cash_movements"

	defaultMovementLimit = 50
)

// MovementIndexes are the indexes List and the close reconciliation lookups rely on
func MovementIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recorded_at", Value: -1}},
			Options: options.Index().SetName("recorded_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetName("transaction_id").SetSparse(true),
		},
	}
}

// MovementRepository implements the register.MovementJournal interface for MongoDB
type MovementRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMovementRepository creates a new MongoDB movement journal
func NewMovementRepository(logger *slog.Logger, db *mongo.Database) register.MovementJournal {
	return &MovementRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores a movement
func (r *MovementRepository) Append(ctx context.Context, m *register.Movement) error {
	collection := r.db.Collection(MovementCollectionName)

	if _, err := collection.InsertOne(ctx, m); err != nil {
		r.logger.Error("Failed to append cash movement",
			"kind", string(m.Kind),
			"amount", m.Amount,
			"error", err)
		return fmt.Errorf("failed to append cash movement: %w", err)
	}

	return nil
}

// List returns up to limit movements sorted by recording time, newest first.
// A non-positive limit falls back to the default page size.
func (r *MovementRepository) List(ctx context.Context, limit int) ([]*register.Movement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	collection := r.db.Collection(MovementCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error("Failed to list cash movements", "error", err)
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}
	defer cursor.Close(ctx)

	movements := []*register.Movement{}
	if err := cursor.All(ctx, &movements); err != nil {
		r.logger.Error("Failed to decode cash movements", "error", err)
		return nil, fmt.Errorf("failed to decode cash movements: %w", err)
	}

	return movements, nil
}
