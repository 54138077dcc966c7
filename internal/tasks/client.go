package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

const memoryDBPath = ":memory:"

// ErrQueueNotRegistered is returned when enqueuing on a queue nobody processes.
var ErrQueueNotRegistered = errors.New("task queue is not registered")

// Client wraps backlite to provide durable background work.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config
	path   string

	mu      sync.RWMutex
	started bool
	queues  []string
}

// DBPath returns the task database path that belongs to the main database.
// "./sunflower.db" maps to "./sunflower-tasks.db".
func DBPath(mainDBPath string) string {
	if mainDBPath == memoryDBPath {
		return memoryDBPath
	}
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}

// NewClient opens the task database next to mainDBPath and installs the
// backlite schema. Tasks enqueued before a crash are picked up on the next start.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	tasksDBPath := DBPath(mainDBPath)

	dsn := tasksDBPath + "?_journal=WAL&_timeout=5000&_busy_timeout=5000"
	if tasksDBPath == memoryDBPath {
		dsn = "file:sunflower-tasks?mode=memory&cache=shared&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	// Workers plus the dispatcher and request-side enqueues share the pool.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logAdapter{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		client: client,
		db:     db,
		config: cfg,
		path:   tasksDBPath,
	}, nil
}

// Register adds task queues. A queue must be registered before anything is
// enqueued on it; registering the same name twice is ignored.
func (c *Client) Register(queues ...backlite.Queue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range queues {
		name := q.Config().Name
		if c.registered(name) {
			continue
		}
		c.client.Register(q)
		c.queues = append(c.queues, name)
	}
}

func (c *Client) registered(name string) bool {
	for _, q := range c.queues {
		if q == name {
			return true
		}
	}
	return false
}

// Queues returns the names of the registered queues in registration order.
func (c *Client) Queues() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.queues...)
}

// Start launches the workers and returns. Tasks saved before Start, including
// ones left over from a previous run, are picked up right away.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	queues := append([]string(nil), c.queues...)
	c.mu.Unlock()

	log.Printf("[TASK] Queue started with %d workers on %s (queues: %v)", c.config.Workers, c.path, queues)
	c.client.Start(ctx)
}

// Running reports whether the workers have been started.
func (c *Client) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Stop waits for running tasks until ctx ends. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.Running() {
		return true
	}

	done := c.client.Stop(ctx)
	if done {
		log.Printf("[TASK] Queue stopped")
	} else {
		log.Printf("[TASK] Queue stop timed out, unfinished tasks resume on next start")
	}
	return done
}

// Close closes the task database. Call Stop first.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enqueue saves task and returns its id. The task runs once a worker is free,
// even if the process restarts first.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	name := task.Config().Name

	c.mu.RLock()
	ok := c.registered(name)
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("enqueue %s: %w", name, ErrQueueNotRegistered)
	}

	ids, err := c.client.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", name, err)
	}
	return ids[0], nil
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// Path returns the task database path.
func (c *Client) Path() string {
	return c.path
}

// logAdapter routes backlite's logs through the standard logger.
type logAdapter struct{}

func (logAdapter) Info(message string, params ...any) {
	log.Print("[TASK] " + formatLogLine(message, params))
}

func (logAdapter) Error(message string, params ...any) {
	log.Print("[TASK ERROR] " + formatLogLine(message, params))
}

// formatLogLine appends key/value params as key=value pairs. A trailing key
// without a value is printed as is.
func formatLogLine(message string, params []any) string {
	var b strings.Builder
	b.WriteString(message)
	for i := 0; i < len(params); i += 2 {
		b.WriteByte(' ')
		if i+1 == len(params) {
			fmt.Fprint(&b, params[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", params[i], params[i+1])
	}
	return b.String()
}
