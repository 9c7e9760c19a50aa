package site

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/tankadesign/iis-site-manager/internal/store"
)

const (
	// bindingPort is the fixed HTTP port sites are bound to. The binding
	// host header carries the site name, so port 80 never collides between
	// sites.
	bindingPort = 80

	// runtimeVersion is the managed runtime tag assigned to dedicated
	// application pools.
	runtimeVersion = "v4.0"

	websiteDirName = "Website"
	logsDirName    = "Logs"
)

// ErrSiteExists is returned by Create when the desired name is taken and
// reclaim was not requested. Callers match it with errors.Is to offer a
// rename instead of a generic failure message.
var ErrSiteExists = errors.New("site already exists")

// CreateOptions describes the site to provision.
type CreateOptions struct {
	// Name is the site name and its binding host header.
	Name string `validate:"required,hostname_rfc1123"`
	// InstallFolder is the root the site's content and log directories hang
	// off. The controller derives paths from it but never touches the
	// filesystem.
	InstallFolder string `validate:"required"`
	// UseSiteSpecificPool provisions a dedicated application pool named
	// after the site.
	UseSiteSpecificPool bool
	// DeleteIfExists reclaims a conflicting site (and its tool-owned pool)
	// before creating.
	DeleteIfExists bool
}

// Controller performs site and application pool lifecycle operations against
// an injected configuration store. It is synchronous and holds no state
// between operations; every operation opens and releases its own store
// session.
type Controller struct {
	store    store.Store
	log      *slog.Logger
	validate *validator.Validate
}

// NewController builds a controller over the given store.
func NewController(st store.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:    st,
		log:      logger,
		validate: validator.New(),
	}
}

// SiteExists reports whether a site with the given name is present in the
// store. With deleteIfExists set, a conflicting site is reclaimed: its
// dedicated pool is removed first when the name matches the tool convention,
// then the site, in one committed session. The return value then reports
// false so the caller can proceed to create.
//
// Only the first exact name match is considered; stores holding duplicate
// site names are unsupported input.
func (c *Controller) SiteExists(name string, deleteIfExists bool) (bool, error) {
	sess, err := c.store.OpenSession()
	if err != nil {
		return false, err
	}
	defer sess.Close()

	var match *store.Site
	for _, s := range sess.Sites() {
		if s.Name == name {
			match = s
			break
		}
	}
	if match == nil {
		return false, nil
	}
	if !deleteIfExists {
		return true, nil
	}

	if match.PoolName == DedicatedPoolName(name) {
		for _, pool := range sess.Pools() {
			if pool.Name == match.PoolName {
				if err := sess.RemovePool(pool); err != nil {
					return true, err
				}
				break
			}
		}
	}
	if err := sess.RemoveSite(match); err != nil {
		return true, err
	}
	if err := sess.Commit(); err != nil {
		return true, err
	}

	c.log.Info("reclaimed conflicting site", "site", name, "id", match.ID)
	return false, nil
}

// Create provisions a new site, and optionally its dedicated application
// pool, in a single committed store session. A name conflict surfaces as
// ErrSiteExists; every other failure is wrapped into one creation error
// carrying the cause.
func (c *Controller) Create(opts CreateOptions) error {
	if err := c.validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid site options: %w", err)
	}

	exists, err := c.SiteExists(opts.Name, opts.DeleteIfExists)
	if err != nil {
		return fmt.Errorf("creating site %q: %w", opts.Name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSiteExists, opts.Name)
	}

	if err := c.provision(opts); err != nil {
		return fmt.Errorf("creating site %q: %w", opts.Name, err)
	}
	return nil
}

// provision stages the whole site into a fresh session and commits once at
// the end. A failure anywhere leaves the store untouched: the deferred Close
// discards the staged transaction.
func (c *Controller) provision(opts CreateOptions) error {
	sess, err := c.store.OpenSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	binding := fmt.Sprintf("*:%d:%s", bindingPort, opts.Name)
	site, err := sess.AddSite(opts.Name, binding, filepath.Join(opts.InstallFolder, websiteDirName))
	if err != nil {
		return err
	}

	site.TraceEnabled = true
	site.TraceDirectory = filepath.Join(opts.InstallFolder, logsDirName)
	// The store assigns the id on add, so the per-site log directory can be
	// derived before commit.
	site.LogDirectory = filepath.Join(opts.InstallFolder, logsDirName, fmt.Sprintf("W3svc%d", site.ID))

	if opts.UseSiteSpecificPool {
		pool, err := sess.AddPool(DedicatedPoolName(opts.Name), runtimeVersion)
		if err != nil {
			return err
		}
		site.PoolName = pool.Name
	}

	if err := sess.Commit(); err != nil {
		return err
	}

	c.log.Info("site created", "site", opts.Name, "id", site.ID,
		"binding", binding, "pool", site.PoolName)
	return nil
}

// DeleteSite removes the site with the given store id. An absent id is
// idempotent success. Host store faults are contained into the result rather
// than returned; other failures propagate. The progress sink, when set,
// receives its terminal value whenever the operation completes normally,
// host fault included.
func (c *Controller) DeleteSite(id int64, progress ProgressFunc) (DeleteResult, error) {
	res, err := c.deleteSite(id)
	if err != nil {
		return res, err
	}
	if progress != nil {
		progress(100)
	}
	return res, nil
}

func (c *Controller) deleteSite(id int64) (DeleteResult, error) {
	sess, err := c.store.OpenSession()
	if err != nil {
		return containHostFault(err)
	}
	defer sess.Close()

	var match *store.Site
	for _, s := range sess.Sites() {
		if s.ID == id {
			match = s
			break
		}
	}
	if match == nil {
		c.log.Info("site already absent", "id", id)
		return DeleteResult{Outcome: NotFound}, nil
	}

	if err := sess.RemoveSite(match); err != nil {
		return containHostFault(err)
	}
	if err := sess.Commit(); err != nil {
		return containHostFault(err)
	}

	c.log.Info("site deleted", "site", match.Name, "id", id)
	return DeleteResult{Outcome: Deleted}, nil
}

// DeletePool removes the application pool with the given name, with the same
// idempotence and fault-containment policy as DeleteSite.
func (c *Controller) DeletePool(name string, progress ProgressFunc) (DeleteResult, error) {
	res, err := c.deletePool(name)
	if err != nil {
		return res, err
	}
	if progress != nil {
		progress(100)
	}
	return res, nil
}

func (c *Controller) deletePool(name string) (DeleteResult, error) {
	sess, err := c.store.OpenSession()
	if err != nil {
		return containHostFault(err)
	}
	defer sess.Close()

	var match *store.Pool
	for _, pool := range sess.Pools() {
		if pool.Name == name {
			match = pool
			break
		}
	}
	if match == nil {
		c.log.Info("pool already absent", "pool", name)
		return DeleteResult{Outcome: NotFound}, nil
	}

	if err := sess.RemovePool(match); err != nil {
		return containHostFault(err)
	}
	if err := sess.Commit(); err != nil {
		return containHostFault(err)
	}

	c.log.Info("pool deleted", "pool", name)
	return DeleteResult{Outcome: Deleted}, nil
}

// ListSites returns the sites in the store. With onlyToolCreated set, only
// sites whose pool name carries the tool marker are returned.
func (c *Controller) ListSites(onlyToolCreated bool) ([]store.Site, error) {
	sess, err := c.store.OpenSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var sites []store.Site
	for _, s := range sess.Sites() {
		if onlyToolCreated && !IsToolPool(s.PoolName) {
			continue
		}
		sites = append(sites, *s)
	}
	return sites, nil
}

// containHostFault turns native host store failures into a HostFault result
// and lets everything else propagate as an error.
func containHostFault(err error) (DeleteResult, error) {
	var hostErr *store.HostError
	if errors.As(err, &hostErr) {
		return DeleteResult{Outcome: HostFault, Detail: hostErr}, nil
	}
	return DeleteResult{}, err
}
