package persistence

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

func TestMongoClientOptions(t *testing.T) {
	cfg := &config.MongoDBConfig{
		URI:             "mongodb://journal:27017",
		Database:        "register",
		Timeout:         3 * time.Second,
		MaxPoolSize:     20,
		MinPoolSize:     2,
		MaxConnIdleTime: time.Minute,
	}

	opts := mongoClientOptions(cfg, "register-api")
	require.NoError(t, opts.Validate())

	assert.Equal(t, []string{"journal:27017"}, opts.Hosts)
	assert.Equal(t, "register-api", *opts.AppName)
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	assert.Equal(t, uint64(2), *opts.MinPoolSize)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	assert.True(t, *opts.RetryWrites)
	assert.Equal(t, writeconcern.Majority(), opts.WriteConcern)
}

func TestMongoDB_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	models := []mongo.IndexModel{{Keys: bson.D{{Key: "recorded_at", Value: -1}}}}

	mt.Run("created", func(mt *mtest.T) {
		mdb := &MongoDB{logger: logger, client: mt.Client, database: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(t, mdb.EnsureIndexes(context.Background(), "cash_movements", models))
		assert.Equal(t, mt.DB, mdb.Database())
	})

	mt.Run("command error", func(mt *mtest.T) {
		mdb := &MongoDB{logger: logger, client: mt.Client, database: mt.DB}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
		}))

		err := mdb.EnsureIndexes(context.Background(), "cash_movements", models)
		assert.ErrorContains(t, err, "failed to create indexes on cash_movements")
	})

	mt.Run("nothing to create", func(mt *mtest.T) {
		mdb := &MongoDB{logger: logger, client: mt.Client, database: mt.DB}
		assert.NoError(t, mdb.EnsureIndexes(context.Background(), "cash_movements", nil))
	})
}
