package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/freementors/internal/auth"
)

// Pinger is the part of the API client the API check needs
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIChecker checks that the GraphQL endpoint answers
type APIChecker struct {
	client   Pinger
	endpoint string
}

// NewAPIChecker creates a checker for the endpoint behind client
func NewAPIChecker(client Pinger, endpoint string) *APIChecker {
	return &APIChecker{client: client, endpoint: endpoint}
}

func (c *APIChecker) Name() string { return "api" }

func (c *APIChecker) Check(ctx context.Context) *Result {
	if err := c.client.Ping(ctx); err != nil {
		return Unhealthy("GraphQL endpoint is not answering").
			WithDetail("endpoint", c.endpoint).
			WithDetail("error", err.Error())
	}
	return Healthy("GraphQL endpoint is reachable").WithDetail("endpoint", c.endpoint)
}

// DirChecker checks that a directory exists (or can be created) and is writable
type DirChecker struct {
	name string
	dir  string
}

// NewDirChecker creates a writability check for dir
func NewDirChecker(name, dir string) *DirChecker {
	return &DirChecker{name: name, dir: dir}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(ctx context.Context) *Result {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return Unhealthy("directory cannot be created").
			WithDetail("path", c.dir).
			WithDetail("error", err.Error())
	}

	scratch, err := os.CreateTemp(c.dir, ".scratch-*")
	if err != nil {
		return Unhealthy("directory is not writable").
			WithDetail("path", c.dir).
			WithDetail("error", err.Error())
	}
	name := scratch.Name()
	_ = scratch.Close()
	_ = os.Remove(name)

	return Healthy("directory is writable").WithDetail("path", filepath.Clean(c.dir))
}

// RedisChecker pings the redis server holding the session
type RedisChecker struct {
	client redis.UniversalClient
	addr   string
}

// NewRedisChecker creates a ping check for client
func NewRedisChecker(client redis.UniversalClient, addr string) *RedisChecker {
	return &RedisChecker{client: client, addr: addr}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) *Result {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Unhealthy("redis is not answering").
			WithDetail("addr", c.addr).
			WithDetail("error", err.Error())
	}
	return Healthy("redis is reachable").WithDetail("addr", c.addr)
}

// SessionChecker resolves the stored session. Being signed out is
// degraded rather than unhealthy.
type SessionChecker struct {
	store *auth.Store
}

// NewSessionChecker creates a check that initializes store
func NewSessionChecker(store *auth.Store) *SessionChecker {
	return &SessionChecker{store: store}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if err := c.store.Initialize(ctx); err != nil {
		return Unhealthy("stored session could not be read").WithDetail("error", err.Error())
	}

	state := c.store.State()
	if !state.IsAuthenticated() {
		return Degraded("not signed in").WithDetail("status", state.Status.String())
	}
	return Healthy(fmt.Sprintf("signed in as %s", state.Identity.Email)).
		WithDetail("role", state.Identity.Role.String()).
		WithDetail("session", auth.Fingerprint(state.Token))
}
