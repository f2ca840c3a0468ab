package keys

// Sep joins the namespace and the route key.
const Sep = ":"

// Storage returns the provider key for key under namespace ns.
// An empty namespace leaves the key untouched so counters live under the bare
// route path.
func Storage(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + Sep + key
}
