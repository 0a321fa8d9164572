package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-ID, X-Confirm"
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// policy holds exact origins plus `scheme://*.suffix` patterns for preview deployments.
type policy struct {
	exact    map[string]struct{}
	wildcard []wildcardOrigin
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

func newPolicy(allowedOrigins []string) policy {
	p := policy{exact: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			p.wildcard = append(p.wildcard, wildcardOrigin{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		p.exact[origin] = struct{}{}
	}
	return p
}

func (p policy) open() bool {
	return len(p.exact) == 0 && len(p.wildcard) == 0
}

func (p policy) allows(origin string) bool {
	if p.open() {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, w := range p.wildcard {
		host, ok := strings.CutPrefix(origin, w.scheme)
		if ok && strings.HasSuffix(host, w.suffix) && len(host) > len(w.suffix) {
			return true
		}
	}
	return false
}

// New returns a CORS middleware for the browser client. An empty allow-list reflects any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	p := newPolicy(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")
		origin := c.GetHeader("Origin")
		permitted := origin != "" && p.allows(origin)
		if permitted {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			if !permitted {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			header.Set("Access-Control-Allow-Headers", allowHeaders)
			header.Set("Access-Control-Allow-Methods", allowMethods)
			header.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
