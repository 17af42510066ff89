package cache

import (
	"encoding/json"
	"fmt"
)

// BuildKey derives a deterministic cache key from a resource name and its
// query parameters. Parameters are serialized through a map, so encoding/json
// emits the keys in sorted order: two requests with the same values but
// different parameter order collide to the same key.
func BuildKey(resource string, params map[string]any) string {
	if len(params) == 0 {
		return resource
	}

	raw, err := json.Marshal(params)
	if err != nil {
		// Params come from parsed query strings; marshal cannot realistically
		// fail, but fall back to the bare resource rather than panic.
		return resource
	}

	return fmt.Sprintf("%s:%s", resource, raw)
}

// EntityKey derives the cache key for a single entity.
func EntityKey(resource, id string) string {
	return fmt.Sprintf("%s:%s", resource, id)
}
