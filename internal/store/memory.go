package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory configuration store with the same staging
// semantics as the SQLite store: a session works on a copy of the object
// graph and Commit swaps the copy in. It backs dry-run mode and tests.
type MemoryStore struct {
	mu     sync.Mutex
	sites  []*Site
	pools  []*Pool
	nextID int64
	log    *slog.Logger

	// FailCommit, when set, makes the next Commit return a HostError.
	// Test hook for the delete-path containment policy.
	FailCommit bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{nextID: 1, log: logger}
}

// OpenSession snapshots the current object graph.
func (m *MemoryStore) OpenSession() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &memorySession{
		id:    uuid.NewString(),
		store: m,
	}
	for _, site := range m.sites {
		copied := *site
		sess.sites = append(sess.sites, &copied)
	}
	for _, pool := range m.pools {
		copied := *pool
		sess.pools = append(sess.pools, &copied)
	}

	m.log.Debug("store session opened", "session", sess.id,
		"sites", len(sess.sites), "pools", len(sess.pools))
	return sess, nil
}

type memorySession struct {
	id    string
	store *MemoryStore
	sites []*Site
	pools []*Pool
	done  bool
}

func (sess *memorySession) Sites() []*Site { return sess.sites }

func (sess *memorySession) Pools() []*Pool { return sess.pools }

func (sess *memorySession) AddSite(name, binding, physicalPath string) (*Site, error) {
	for _, site := range sess.sites {
		if site.Binding == binding {
			return nil, fmt.Errorf("add site: binding %q already in use", binding)
		}
	}

	sess.store.mu.Lock()
	id := sess.store.nextID
	sess.store.nextID++
	sess.store.mu.Unlock()

	site := &Site{
		ID:           id,
		Name:         name,
		Binding:      binding,
		PhysicalPath: physicalPath,
	}
	sess.sites = append(sess.sites, site)
	return site, nil
}

func (sess *memorySession) RemoveSite(site *Site) error {
	for i, s := range sess.sites {
		if s == site {
			sess.sites = append(sess.sites[:i], sess.sites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove site: site %q not in session", site.Name)
}

func (sess *memorySession) AddPool(name, runtimeVersion string) (*Pool, error) {
	for _, pool := range sess.pools {
		if pool.Name == name {
			return nil, fmt.Errorf("add pool: pool %q already exists", name)
		}
	}
	pool := &Pool{Name: name, RuntimeVersion: runtimeVersion}
	sess.pools = append(sess.pools, pool)
	return pool, nil
}

func (sess *memorySession) RemovePool(pool *Pool) error {
	for i, p := range sess.pools {
		if p == pool {
			sess.pools = append(sess.pools[:i], sess.pools[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove pool: pool %q not in session", pool.Name)
}

func (sess *memorySession) Commit() error {
	if sess.done {
		return fmt.Errorf("commit: session already closed")
	}

	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	if sess.store.FailCommit {
		sess.store.FailCommit = false
		return &HostError{Op: "commit", Err: fmt.Errorf("injected host failure")}
	}

	sess.store.sites = sess.sites
	sess.store.pools = sess.pools
	sess.done = true
	sess.store.log.Debug("store session committed", "session", sess.id)
	return nil
}

func (sess *memorySession) Close() error {
	sess.done = true
	return nil
}
