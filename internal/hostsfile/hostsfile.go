// Package hostsfile maintains local name resolution for provisioned sites.
// Sites are bound to a host header equal to their name, so the name has to
// resolve to the loopback address on the host itself.
package hostsfile

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// marker tags lines owned by this tool so Remove never touches entries the
// user wrote themselves.
const marker = "# iis-site-manager"

const loopback = "127.0.0.1"

// Manager edits a hosts file in place.
type Manager struct {
	path   string
	dryRun bool
	log    *slog.Logger
}

// New returns a manager for the hosts file at path.
func New(path string, dryRun bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{path: path, dryRun: dryRun, log: logger}
}

// Ensure appends a loopback entry for siteName unless one already resolves
// it. Idempotent.
func (m *Manager) Ensure(siteName string) error {
	lines, err := m.readLines()
	if err != nil {
		return err
	}

	for _, line := range lines {
		if lineResolves(line, siteName) {
			m.log.Debug("hosts entry already present", "site", siteName)
			return nil
		}
	}

	entry := fmt.Sprintf("%s\t%s\t%s", loopback, siteName, marker)
	if m.dryRun {
		m.log.Info("dry run: would append hosts entry", "entry", entry)
		return nil
	}

	lines = append(lines, entry)
	if err := m.writeLines(lines); err != nil {
		return fmt.Errorf("failed to add hosts entry for %s: %v", siteName, err)
	}
	m.log.Info("hosts entry added", "site", siteName)
	return nil
}

// Remove deletes tool-owned entries for siteName. Entries without the tool
// marker are left alone. Removing an absent entry is not an error.
func (m *Manager) Remove(siteName string) error {
	lines, err := m.readLines()
	if err != nil {
		return err
	}

	var kept []string
	removed := 0
	for _, line := range lines {
		if strings.Contains(line, marker) && lineResolves(line, siteName) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return nil
	}

	if m.dryRun {
		m.log.Info("dry run: would remove hosts entries", "site", siteName, "count", removed)
		return nil
	}

	if err := m.writeLines(kept); err != nil {
		return fmt.Errorf("failed to remove hosts entry for %s: %v", siteName, err)
	}
	m.log.Info("hosts entry removed", "site", siteName)
	return nil
}

// Entries returns the site names of all tool-owned entries.
func (m *Manager) Entries() ([]string, error) {
	lines, err := m.readLines()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range lines {
		if !strings.Contains(line, marker) {
			continue
		}
		fields := strings.Fields(stripComment(line))
		if len(fields) >= 2 && fields[0] == loopback {
			names = append(names, fields[1:]...)
		}
	}
	return names, nil
}

func (m *Manager) readLines() ([]string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hosts file %s: %v", m.path, err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

func (m *Manager) writeLines(lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(m.path, []byte(content), 0644)
}

// lineResolves reports whether a hosts line maps siteName to an address.
func lineResolves(line, siteName string) bool {
	fields := strings.Fields(stripComment(line))
	if len(fields) < 2 {
		return false
	}
	for _, host := range fields[1:] {
		if host == siteName {
			return true
		}
	}
	return false
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}
