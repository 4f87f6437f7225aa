// Package routes declares HTTP route tables and registers them on a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/flora/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
	Schemas  map[string]*openapi.Schema
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(prefix string, _ Group, route Route) {
			mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
		})
	}
}

// Describe adds every documented route and group schema to spec.
// Routes without an OpenAPI operation are skipped. Operations without tags
// inherit the tags of their group.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		if group.Schemas != nil {
			spec.Components.AddSchemas(group.Schemas)
		}

		walk("", group, func(prefix string, g Group, route Route) {
			if route.OpenAPI == nil {
				return
			}
			if len(route.OpenAPI.Tags) == 0 {
				route.OpenAPI.Tags = g.Tags
			}
			spec.AddOperation(prefix+route.Pattern, route.Method, route.OpenAPI)
		})
	}
}

func walk(parentPrefix string, group Group, fn func(prefix string, g Group, route Route)) {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(prefix, group, route)
	}
	for _, child := range group.Children {
		walk(prefix, child, fn)
	}
}
