package models

// RouteDescriptor is one entry of the route catalog: a navigable application
// section together with its display and grouping metadata. Name is unique
// across the catalog. Parent, when set, references another descriptor's Name;
// the catalog is assumed acyclic and at most one level deep.
type RouteDescriptor struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Path        string `json:"path"`
	Component   string `json:"component"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Parent      string `json:"parent,omitempty"`
}

// RouteMeta carries the navigation metadata the frontend router expects on
// every resolved route.
type RouteMeta struct {
	Title        string   `json:"title"`
	RequiresAuth bool     `json:"requiresAuth"`
	Permissions  []string `json:"permissions"`
}

// RouteConfig is a resolved route ready for consumption by the frontend
// router. Children is populated only on parent routes.
type RouteConfig struct {
	Path      string        `json:"path"`
	Name      string        `json:"name"`
	Component string        `json:"component"`
	Meta      RouteMeta     `json:"meta"`
	Children  []RouteConfig `json:"children,omitempty"`
}
