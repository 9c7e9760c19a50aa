package store

import "fmt"

// Site represents a hosted site in the server configuration store.
type Site struct {
	ID             int64
	Name           string
	Binding        string
	PhysicalPath   string
	LogDirectory   string
	TraceDirectory string
	TraceEnabled   bool
	PoolName       string
}

// Pool represents an application pool in the server configuration store.
type Pool struct {
	Name           string
	RuntimeVersion string
}

// Store opens scoped sessions against the host configuration store.
type Store interface {
	OpenSession() (Session, error)
}

// Session is a scoped, transactional handle over the store's site and
// application pool collections. Mutations are staged inside the session and
// become durable only on Commit. Close releases the handle and discards any
// uncommitted changes; calling Close after a successful Commit is a no-op.
type Session interface {
	// Sites returns the sites currently visible to this session. Field
	// changes made on the returned objects are flushed on Commit.
	Sites() []*Site
	// Pools returns the application pools visible to this session.
	Pools() []*Pool
	// AddSite stages a new site and assigns its store id immediately, so
	// the id is usable before Commit.
	AddSite(name, binding, physicalPath string) (*Site, error)
	// RemoveSite stages removal of a site.
	RemoveSite(site *Site) error
	// AddPool stages a new application pool.
	AddPool(name, runtimeVersion string) (*Pool, error)
	// RemovePool stages removal of an application pool.
	RemovePool(pool *Pool) error
	Commit() error
	Close() error
}

// HostError wraps a failure raised by the store's native driver, as opposed
// to an ordinary lookup or staging error. Delete flows treat this class as
// containable.
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host store failure during %s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }
