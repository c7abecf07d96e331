package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/register-pos/internal/domain/outbox"
	"github.com/register-pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPoller(repo outbox.Repository, publisher ChangePublisher) *Poller {
	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	return NewPoller(cfg, repo, publisher, newTestLogger())
}

func TestPoller_PublishBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes every message in order", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		publisher := new(MockChangePublisher)
		m1, m2 := pendingMessage(t, 1, 0), pendingMessage(t, 2, 0)

		var order []int64
		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
		publisher.On("PublishChange", ctx, mock.Anything).Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(*outbox.Message).ID)
		}).Return(nil)

		settled, err := newTestPoller(repo, publisher).publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, settled)
		assert.Equal(t, []int64{1, 2}, order)
	})

	t.Run("a failure halts the batch", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		publisher := new(MockChangePublisher)
		m1, m2 := pendingMessage(t, 1, 0), pendingMessage(t, 2, 0)

		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
		repo.On("SaveAttempt", ctx, m1).Return(nil).Once()
		publisher.On("PublishChange", ctx, m1).Return(errors.New("broker down")).Once()

		settled, err := newTestPoller(repo, publisher).publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, settled)
		publisher.AssertNotCalled(t, "PublishChange", ctx, m2)
		assert.Equal(t, 1, m1.Attempts)
		assert.Equal(t, shared.OutboxStatusPending, m1.Status)
		require.NotNil(t, m1.LastAttemptAt)
	})

	t.Run("exhausted messages are parked and the batch continues", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		publisher := new(MockChangePublisher)
		m1, m2 := pendingMessage(t, 1, 2), pendingMessage(t, 2, 0)

		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
		repo.On("SaveAttempt", ctx, m1).Return(nil).Once()
		publisher.On("PublishChange", ctx, m1).Return(errors.New("broker down")).Once()
		publisher.On("PublishChange", ctx, m2).Return(nil).Once()

		settled, err := newTestPoller(repo, publisher).publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, settled)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
		assert.Equal(t, 3, m1.Attempts)
		assert.Equal(t, shared.OutboxStatusFailedToPublish, m1.Status)
	})

	t.Run("an unsaved attempt halts the batch", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		publisher := new(MockChangePublisher)
		m1, m2 := pendingMessage(t, 1, 2), pendingMessage(t, 2, 0)

		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
		repo.On("SaveAttempt", ctx, m1).Return(errors.New("db down")).Once()
		publisher.On("PublishChange", ctx, m1).Return(errors.New("broker down")).Once()

		settled, err := newTestPoller(repo, publisher).publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, settled)
		publisher.AssertNotCalled(t, "PublishChange", ctx, m2)
	})

	t.Run("malformed messages are skipped", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		publisher := new(MockChangePublisher)
		m1, m2 := pendingMessage(t, 1, 0), pendingMessage(t, 2, 0)

		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
		publisher.On("PublishChange", ctx, m1).Return(fmt.Errorf("outbox 1: %w", ErrMalformedPayload)).Once()
		publisher.On("PublishChange", ctx, m2).Return(nil).Once()

		settled, err := newTestPoller(repo, publisher).publishBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, settled)
		publisher.AssertExpectations(t)
		repo.AssertNotCalled(t, "SaveAttempt", mock.Anything, mock.Anything)
	})

	t.Run("read failure", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		repo.On("GetPending", ctx, 10).Return(nil, errors.New("db down")).Once()

		_, err := newTestPoller(repo, new(MockChangePublisher)).publishBatch(ctx)
		assert.ErrorContains(t, err, "failed to get pending outbox messages")
	})
}

func TestPoller_Start(t *testing.T) {
	polled := make(chan struct{}, 1)
	repo := new(MockOutboxRepo)
	repo.On("GetPending", mock.Anything, 10).Run(func(mock.Arguments) {
		select {
		case polled <- struct{}{}:
		default:
		}
	}).Return([]*outbox.Message{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newTestPoller(repo, new(MockChangePublisher)).Start(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("poller never polled")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestPoller_DrainsFullBatches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOutboxRepo)
	publisher := new(MockChangePublisher)

	full := make([]*outbox.Message, 10)
	for i := range full {
		full[i] = pendingMessage(t, int64(i+1), 0)
	}
	tail := []*outbox.Message{pendingMessage(t, 11, 0)}

	repo.On("GetPending", ctx, 10).Return(full, nil).Once()
	repo.On("GetPending", ctx, 10).Return(tail, nil).Once()
	publisher.On("PublishChange", ctx, mock.Anything).Return(nil)

	newTestPoller(repo, publisher).drain(ctx)

	repo.AssertNumberOfCalls(t, "GetPending", 2)
	publisher.AssertNumberOfCalls(t, "PublishChange", 11)
}
