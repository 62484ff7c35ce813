package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/models"
)

const permissionsDocument = "route_permissions"

// permissionsDoc is the on-disk shape of route_permissions.json: the route
// catalog, the per-user ordered assignment lists and the default list.
type permissionsDoc struct {
	AvailableRoutes      []models.RouteDescriptor `json:"availableRoutes"`
	UserRoutePermissions map[string][]string      `json:"userRoutePermissions"`
	DefaultPermissions   []string                 `json:"defaultPermissions"`
	LastUpdated          string                   `json:"lastUpdated,omitempty"`
}

// PermissionStore owns the route catalog and the per-user route-permission
// assignments, mirrored to the snapshotter on every mutation.
type PermissionStore struct {
	mu       sync.Mutex
	catalog  []models.RouteDescriptor
	assigned map[string][]string
	defaults []string
	snap     Snapshotter
}

// NewPermissionStore loads the persisted configuration or seeds the default
// catalog when no snapshot exists.
func NewPermissionStore(snap Snapshotter) (*PermissionStore, error) {
	s := &PermissionStore{snap: snap}

	var doc permissionsDoc
	err := snap.Load(permissionsDocument, &doc)
	switch {
	case err == nil && len(doc.AvailableRoutes) > 0:
		s.catalog = doc.AvailableRoutes
		s.assigned = doc.UserRoutePermissions
		s.defaults = doc.DefaultPermissions
	case err == nil || err == ErrNoSnapshot:
		s.catalog = seedCatalog()
		s.assigned = map[string][]string{}
		s.defaults = []string{"Profile"}
		logger.Log().Info("no route-permission snapshot found, seeding default catalog")
	default:
		return nil, fmt.Errorf("load route permissions: %w", err)
	}

	if s.assigned == nil {
		s.assigned = map[string][]string{}
	}
	return s, nil
}

func seedCatalog() []models.RouteDescriptor {
	return []models.RouteDescriptor{
		{Name: "Dashboard", Title: "Product Center", Path: "/dashboard", Component: "Dashboard/index",
			Description: "Product showcase and management hub", Category: "Core"},
		{Name: "Analysis", Title: "Product Showcase", Path: "/dashboard/analysis", Component: "Analysis/index",
			Description: "Product data analysis and display", Category: "Core", Parent: "Dashboard"},
		{Name: "UserManagement", Title: "User Management", Path: "/user-management", Component: "UserManagement/index",
			Description: "System account administration", Category: "Administration"},
		{Name: "Data", Title: "Data Center", Path: "/Data", Component: "Data/index",
			Description: "Data storage and management hub", Category: "Data"},
		{Name: "DataPanel", Title: "Data Panel", Path: "/dataPanel", Component: "DataPanel/index",
			Description: "Data visualization panel", Category: "Data"},
		{Name: "devices", Title: "Device Management", Path: "/devices", Component: "devices/index",
			Description: "Device management hub", Category: "Data"},
		{Name: "Profile", Title: "Profile", Path: "/profile", Component: "Profile/index",
			Description: "Personal information management", Category: "Basics"},
	}
}

func (s *PermissionStore) persist() {
	doc := permissionsDoc{
		AvailableRoutes:      s.catalog,
		UserRoutePermissions: s.assigned,
		DefaultPermissions:   s.defaults,
		LastUpdated:          time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.snap.Save(permissionsDocument, doc); err != nil {
		metrics.IncSnapshotFailure()
		logger.WithError(err).Warn("route-permission snapshot failed, in-memory state may be lost on restart")
	}
}

// Flush re-persists the current state and reports the outcome.
func (s *PermissionStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := permissionsDoc{
		AvailableRoutes:      s.catalog,
		UserRoutePermissions: s.assigned,
		DefaultPermissions:   s.defaults,
		LastUpdated:          time.Now().UTC().Format(time.RFC3339),
	}
	return s.snap.Save(permissionsDocument, doc)
}

// Catalog returns a copy of the route catalog.
func (s *PermissionStore) Catalog() []models.RouteDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RouteDescriptor, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Defaults returns a copy of the default route-name list.
func (s *PermissionStore) Defaults() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// Get returns the assignment for a username and whether one exists. Callers
// choose their own fallback when it does not.
func (s *PermissionStore) Get(username string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, ok := s.assigned[username]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// Set validates every name against the catalog and replaces the user's
// assignment, returning the previous effective list for change reporting.
func (s *PermissionStore) Set(username string, names []string) (old []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.catalog))
	for _, d := range s.catalog {
		known[d.Name] = true
	}
	var invalid []string
	for _, n := range names {
		if !known[n] {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: unknown permissions: %s", ErrInvalid, strings.Join(invalid, ", "))
	}

	old = s.assigned[username]
	if old == nil {
		old = s.defaults
	}
	replacement := make([]string, len(names))
	copy(replacement, names)
	s.assigned[username] = replacement
	s.persist()
	return old, nil
}

// AssignDefaults gives a user a copy of the default list. Used on
// registration and on admin-create without an explicit selection. The stored
// slice and the returned slice are separate copies so the caller cannot
// mutate the assignment.
func (s *PermissionStore) AssignDefaults(username string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]string, len(s.defaults))
	copy(stored, s.defaults)
	s.assigned[username] = stored
	s.persist()
	out := make([]string, len(stored))
	copy(out, stored)
	return out
}

// Remove drops a user's assignment; the cascade half of user deletion.
func (s *PermissionStore) Remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assigned[username]; !ok {
		return
	}
	delete(s.assigned, username)
	s.persist()
}

// Rename moves an assignment to a new username, keeping the cascade intact
// when an admin renames an account.
func (s *PermissionStore) Rename(oldName, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, ok := s.assigned[oldName]
	if !ok || oldName == newName {
		return
	}
	delete(s.assigned, oldName)
	s.assigned[newName] = names
	s.persist()
}

// Describe maps route names to their catalog descriptors, preserving order
// and silently skipping unknown names.
func (s *PermissionStore) Describe(names []string) []models.RouteDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := make(map[string]models.RouteDescriptor, len(s.catalog))
	for _, d := range s.catalog {
		byName[d.Name] = d
	}
	out := make([]models.RouteDescriptor, 0, len(names))
	for _, n := range names {
		if d, ok := byName[n]; ok {
			out = append(out, d)
		}
	}
	return out
}
