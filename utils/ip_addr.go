package utils

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// netAddrPattern pulls the IP address out of a net.Addr string, which
// carries a trailing port number
var netAddrPattern = regexp.MustCompile(`^(.*):\d+$`)

// GetIpAddress resolves the client IP address from the request headers
// and the underlying net address. Proxy headers win over the raw
// address, since behind Cloudflare or a load balancer the raw address
// is the proxy's.
func GetIpAddress(
	header http.Header,
	addr net.Addr,
) string {

	if header != nil {

		// Cloudflare forwards the original client in CF-Connecting-IP
		if ip := header.Get("CF-Connecting-IP"); len(ip) > 0 {
			return ip
		}

		// Otherwise take the first hop from X-Forwarded-For
		if forwarded := header.Get("X-Forwarded-For"); len(forwarded) > 0 {
			return strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}

	}

	// Fall back to the connection's own address
	if addr == nil {
		return ""
	}
	submatch := netAddrPattern.FindStringSubmatch(addr.String())
	if len(submatch) < 2 {
		return ""
	}

	// Strip the IPv6 bracket and mapped-IPv4 decorations
	ip := submatch[1]
	ip = strings.Trim(ip, "[]")
	ip = strings.TrimPrefix(ip, "::ffff:")
	return ip

}
