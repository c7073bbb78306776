package tenant

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// ResolveSlug derives a tenant slug from request routing data. The [domain]
// path segment wins over the Host header. It may be a bare slug or a host
// under rootDomain. Returns false when no slug can be derived.
func ResolveSlug(pathDomain, host, rootDomain string) (string, bool) {
	rootDomain = strings.ToLower(strings.TrimSpace(rootDomain))

	if pathDomain != "" {
		if unescaped, err := url.PathUnescape(pathDomain); err == nil {
			pathDomain = unescaped
		}
		h := normalizeHost(pathDomain)
		if sub, ok := subdomainOf(h, rootDomain); ok {
			return validSlug(sub)
		}
		return validSlug(h)
	}

	sub, ok := subdomainOf(normalizeHost(host), rootDomain)
	if !ok {
		return "", false
	}
	return validSlug(sub)
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.TrimSuffix(h, ".")
}

// subdomainOf returns the left-most label of host when host sits directly
// under root. "www" never names a tenant.
func subdomainOf(host, root string) (string, bool) {
	if root == "" || !strings.HasSuffix(host, "."+root) {
		return "", false
	}
	sub := strings.TrimSuffix(host, "."+root)
	if strings.Contains(sub, ".") || sub == "www" {
		return "", false
	}
	return sub, true
}

func validSlug(s string) (string, bool) {
	if !slugPattern.MatchString(s) || s == "www" {
		return "", false
	}
	return s, true
}
