// Package permissions turns a user's ordered route-name assignment into the
// nested route configuration the frontend router consumes.
package permissions

import (
	"strings"

	"github.com/koweyli/vantage-console/internal/models"
)

// Resolve walks the assigned names in order and materializes their catalog
// descriptors into route configs. Top-level entries keep first-occurrence
// order; children are appended in visit order under their parent. Nesting is
// one level deep.
//
// A child whose parent name is not itself part of the assignment is dropped
// entirely: neither the parent nor the child appears in the output. Assigning
// a parent therefore has to be explicit, it is never implied by a child.
func Resolve(assigned []string, catalog []models.RouteDescriptor, capabilities []string) []models.RouteConfig {
	byName := make(map[string]models.RouteDescriptor, len(catalog))
	for _, d := range catalog {
		byName[d.Name] = d
	}
	assignedSet := make(map[string]bool, len(assigned))
	for _, name := range assigned {
		assignedSet[name] = true
	}
	if capabilities == nil {
		capabilities = []string{}
	}

	meta := func(title string) models.RouteMeta {
		return models.RouteMeta{Title: title, RequiresAuth: true, Permissions: capabilities}
	}

	routes := make([]models.RouteConfig, 0, len(assigned))
	// index maps a route name to its position in routes; processedParents
	// marks parents synthesized ahead of their own assignment slot.
	index := make(map[string]int, len(assigned))
	processedParents := make(map[string]bool)

	for _, name := range assigned {
		desc, ok := byName[name]
		if !ok {
			continue
		}

		if desc.Parent == "" {
			if processedParents[desc.Name] {
				// Already materialized while handling one of its children.
				continue
			}
			routes = append(routes, models.RouteConfig{
				Path:      desc.Path,
				Name:      desc.Name,
				Component: desc.Component,
				Meta:      meta(desc.Title),
			})
			index[desc.Name] = len(routes) - 1
			continue
		}

		pi, exists := index[desc.Parent]
		if !exists {
			parent, ok := byName[desc.Parent]
			if ok && assignedSet[parent.Name] {
				routes = append(routes, models.RouteConfig{
					Path:      parent.Path,
					Name:      parent.Name,
					Component: parent.Component,
					Meta:      meta(parent.Title),
					Children:  []models.RouteConfig{},
				})
				pi = len(routes) - 1
				index[parent.Name] = pi
				processedParents[parent.Name] = true
				exists = true
			}
		}
		if !exists {
			continue
		}

		routes[pi].Children = append(routes[pi].Children, models.RouteConfig{
			Path:      childPath(desc.Path, routes[pi].Path, desc.Name),
			Name:      desc.Name,
			Component: desc.Component,
			Meta:      meta(desc.Title),
		})
	}

	return routes
}

// childPath rewrites a child's absolute path relative to its parent: the
// parent's path is stripped along with a leading slash, falling back to the
// lowercased route name when nothing remains.
func childPath(full, parentPath, name string) string {
	p := strings.Replace(full, parentPath, "", 1)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return strings.ToLower(name)
	}
	return p
}
