// Package activity models a chain of dependent lookups against a mock user
// service: every step needs the previous step's output, so the steps run
// strictly one after another.
package activity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/utkarsh5026/seqpar/task"
	"go.uber.org/zap"
)

var (
	ErrInvalidUserID = errors.New("invalid user id: must be a positive number")
	ErrNetwork       = errors.New("network error: failed to fetch user data")
	ErrUserNotFound  = errors.New("user not found")
)

// DefaultLatencyMs is the simulated round-trip of every mock call.
const DefaultLatencyMs = 1000

// User is a directory entry.
type User struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

var seedUsers = []User{
	{ID: 1, Name: "John Doe", Email: "john@example.com"},
	{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
	{ID: 3, Name: "Bob Johnson", Email: "bob@example.com"},
	{ID: 4, Name: "Alice Brown", Email: "alice@example.com"},
	{ID: 5, Name: "Charlie Davis", Email: "charlie@example.com"},
}

// Directory is an in-memory user table behind a simulated network call.
type Directory struct {
	users     map[int]User
	sim       *task.Simulator
	latencyMs int64
	log       *zap.Logger

	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithLatency sets the simulated duration of every lookup.
func WithLatency(ms int64) DirectoryOption {
	return func(d *Directory) {
		if ms >= 0 {
			d.latencyMs = ms
		}
	}
}

// WithNetworkFailureRate makes lookups fail with ErrNetwork with the given
// probability, drawn from a generator seeded with seed.
func WithNetworkFailureRate(rate float64, seed uint64) DirectoryOption {
	return func(d *Directory) {
		d.failureRate = rate
		d.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
}

// WithDirectoryLogger sets the logger.
func WithDirectoryLogger(log *zap.Logger) DirectoryOption {
	return func(d *Directory) {
		if log != nil {
			d.log = log
		}
	}
}

// WithSimulator replaces the simulator used to wait out the latency.
func WithSimulator(sim *task.Simulator) DirectoryOption {
	return func(d *Directory) {
		if sim != nil {
			d.sim = sim
		}
	}
}

// NewDirectory returns a directory holding the five demo users.
func NewDirectory(opts ...DirectoryOption) *Directory {
	d := &Directory{
		users:     make(map[int]User, len(seedUsers)),
		sim:       task.NewSimulator(),
		latencyMs: DefaultLatencyMs,
		log:       zap.NewNop(),
	}
	for _, u := range seedUsers {
		d.users[u.ID] = u
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchUser looks up id after the simulated latency. Errors are checked in
// order: invalid id, network failure, then not found.
func (d *Directory) FetchUser(ctx context.Context, id int) (User, error) {
	if _, err := d.sim.Simulate(ctx, fmt.Sprintf("fetch-user-%d", id), d.latencyMs); err != nil {
		return User{}, err
	}

	if id <= 0 {
		return User{}, fmt.Errorf("%w: got %d", ErrInvalidUserID, id)
	}
	if d.networkFails() {
		d.log.Warn("Simulated network failure", zap.Int("user_id", id))
		return User{}, ErrNetwork
	}

	u, ok := d.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u, nil
}

func (d *Directory) networkFails() bool {
	if d.rng == nil || d.failureRate <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() < d.failureRate
}
