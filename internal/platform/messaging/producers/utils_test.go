package producers

import (
	"testing"

	"github.com/register-pos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicConfig(t *testing.T) {
	t.Run("fills in single partition defaults", func(t *testing.T) {
		tc := topicConfig(&config.KafkaConfig{}, "register_transaction_changes")
		assert.Equal(t, "register_transaction_changes", tc.Topic)
		assert.Equal(t, 1, tc.NumPartitions)
		assert.Equal(t, 1, tc.ReplicationFactor)
	})

	t.Run("keeps configured values", func(t *testing.T) {
		tc := topicConfig(&config.KafkaConfig{NumPartitions: 3, ReplicationFactor: 2}, "dlq")
		assert.Equal(t, 3, tc.NumPartitions)
		assert.Equal(t, 2, tc.ReplicationFactor)
	})
}

func TestDialAny_NoBrokers(t *testing.T) {
	conn, err := dialAny(nil)
	require.ErrorIs(t, err, errNoBrokers)
	assert.Nil(t, conn)
}
