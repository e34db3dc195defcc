package middleware

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/artcopy/models"
	"github.com/cppla/artcopy/utils"
)

// ContextClientMetaKey stores the request's models.ClientMeta in gin context.
const ContextClientMetaKey = "client_meta"

// ParseTrustedProxies accepts bare IPs and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// ClientMeta captures the visitor address and user agent once per request,
// truncated to the analytics column limits. Forwarding headers are honoured
// only when the direct peer is one of trusted.
func ClientMeta(trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextClientMetaKey, clientMeta(c, trusted))
		c.Next()
	}
}

// GetClientMeta returns the metadata stored by ClientMeta. Without the
// middleware it falls back to the direct peer address.
func GetClientMeta(c *gin.Context) models.ClientMeta {
	if v, ok := c.Get(ContextClientMetaKey); ok {
		if meta, ok := v.(models.ClientMeta); ok {
			return meta
		}
	}
	return clientMeta(c, nil)
}

func clientMeta(c *gin.Context, trusted []netip.Prefix) models.ClientMeta {
	return models.ClientMeta{
		IPAddress: utils.Truncate(effectiveClientIP(c, trusted), models.MaxIPAddressLength),
		UserAgent: utils.Truncate(c.Request.UserAgent(), models.MaxUserAgentLength),
	}
}

// effectiveClientIP extracts the visitor IP. Behind a trusted proxy the
// priority is CF-Connecting-IP > X-Real-IP > first of X-Forwarded-For;
// otherwise the peer address is used as is.
func effectiveClientIP(c *gin.Context, trusted []netip.Prefix) string {
	peer := stripPort(c.Request.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}
	if v := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); v != "" {
		if v = stripPort(v); net.ParseIP(v) != nil {
			return v
		}
	}
	if v := strings.TrimSpace(c.GetHeader("X-Real-IP")); v != "" {
		if v = stripPort(v); net.ParseIP(v) != nil {
			return v
		}
	}
	if v := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); v != "" {
		cand := stripPort(strings.TrimSpace(strings.Split(v, ",")[0]))
		if net.ParseIP(cand) != nil {
			return cand
		}
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func stripPort(ip string) string {
	if h, _, err := net.SplitHostPort(ip); err == nil {
		return h
	}
	return ip
}
