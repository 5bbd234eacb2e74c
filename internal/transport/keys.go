// Cache key derivation and write-invalidation rules.
//
// Keys are deterministic over (method, path, query): the query is encoded in
// canonical (sorted) form so parameter order never splits the cache. Only
// GET responses are cached, so invalidation prefixes are keyed on the GET
// namespace of the mutated resource.

package transport

import (
	"net/url"
	"strings"
	"time"
)

// cacheKey builds the cache key for a request. The method leads so that a
// resource prefix scopes cleanly: "GET commitments/alice/today?days=30".
func cacheKey(method, path string, query url.Values) string {
	key := method + " " + strings.Trim(path, "/")
	if enc := query.Encode(); enc != "" { // Encode sorts keys
		key += "?" + enc
	}
	return key
}

// resourceOf returns the leading path segment, the unit at which cache
// invalidation operates ("commitments", "checkins", "goals", ...).
func resourceOf(path string) string {
	p := strings.Trim(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

// keyPrefix is the cache namespace of a resource's cached reads.
func keyPrefix(resource string) string {
	return "GET " + resource
}

// invalidationRules maps a mutated resource to the cache prefixes that must
// be purged before the next read of those resources may hit cache. Every
// resource purges at least itself; aggregates (dashboard) are derived from
// nearly everything, so every mutation purges them too.
var invalidationRules = map[string][]string{
	"checkins":       {"checkins", "commitments", "dashboard"},
	"commitments":    {"commitments", "checkins", "dashboard"},
	"goals":          {"goals", "dashboard"},
	"life-decisions": {"life-decisions", "dashboard"},
	"users":          {"users", "dashboard"},
	"chat":           {"chat", "advice", "dashboard"},
}

// prefixesFor returns the cache prefixes to purge after a successful
// mutation of resource. Unlisted resources still purge their own prefix, so
// the invalidate-own-resource invariant holds for endpoints added later.
func prefixesFor(resource string) []string {
	if rules, ok := invalidationRules[resource]; ok {
		out := make([]string, 0, len(rules))
		for _, r := range rules {
			out = append(out, keyPrefix(r))
		}
		return out
	}
	return []string{keyPrefix(resource)}
}

// volatileResources are aggregate endpoints whose payloads move with nearly
// every write; they get the short TTL.
var volatileResources = map[string]bool{
	"dashboard": true,
}

// ttlFor picks the cache TTL class for a read. Dashboard aggregates and
// stat summaries are volatile; everything else uses the general TTL.
func (c *Client) ttlFor(path string) time.Duration {
	p := strings.Trim(path, "/")
	if volatileResources[resourceOf(p)] || strings.HasSuffix(p, "/stats") || strings.HasSuffix(p, "/dashboard") {
		return c.volatileTTL
	}
	return c.generalTTL
}
