package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/service"
	"github.com/yectos/projects-api/internal/testutil"
)

func userCtx(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{UserID: userID})
}

type publishedEvent struct {
	routingKey string
	payload    interface{}
}

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.routingKey
	}
	return keys
}

// memoryCache is an in-process cache.Cache for tests
type memoryCache struct {
	mu      sync.Mutex
	values  map[string]interface{}
	deleted []string
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache down")
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, copyInto(v, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }
func (c *memoryCache) Close() error               { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

var _ cache.Cache = (*memoryCache)(nil)

type fixture struct {
	db        *gorm.DB
	projects  *service.ProjectService
	dashboard *service.DashboardService
	cache     *memoryCache
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	projectRepo := repository.NewProjectRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	c := newMemoryCache()
	pub := &recordingPublisher{}

	f := &fixture{
		db:        db,
		projects:  service.NewProjectService(projectRepo, activityRepo, c, pub, logger),
		dashboard: service.NewDashboardService(projectRepo, snapshotRepo, c, time.Minute, logger),
		cache:     c,
		publisher: pub,
	}
	require.NotNil(t, f.projects)
	return f
}

func copyInto(src, dest interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
