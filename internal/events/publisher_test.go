package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yectos/projects-api/internal/config"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp091.Publishing
	keys      []string
	exchanges []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exchanges = append(f.exchanges, exchange)
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "projects", zap.NewNop())

	projectID := uuid.New()
	event := NewProjectEvent("alice", projectID, nil)
	require.NoError(t, p.Publish(context.Background(), ProjectCreated, event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "projects", ch.exchanges[0])
	assert.Equal(t, ProjectCreated, ch.keys[0])

	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	var decoded ProjectEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, projectID, decoded.ProjectID)
	assert.Equal(t, "alice", decoded.UserID)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisherWithChannel(ch, "projects", zap.NewNop())

	err := p.Publish(context.Background(), ProjectDeleted, map[string]string{"id": "x"})
	assert.ErrorContains(t, err, ProjectDeleted)
}

func TestAMQPPublisher_ConcurrentPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "projects", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Publish(context.Background(), ProjectUpdated, map[string]int{"n": 1})
		}()
	}
	wg.Wait()
	assert.Len(t, ch.published, 20)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(&config.EventsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), ProjectCreated, nil))
}
