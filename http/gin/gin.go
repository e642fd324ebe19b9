// Package gin mounts the construction service on a Gin router. It is a thin
// adapter: every request is delegated to the http package's Server.
package gin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httpx "github.com/mark3labs/assetkit-go/http"
)

// Register mounts srv under /v1 of router. When router is a group its base
// path is stripped before the request reaches srv.
//
// Example usage:
//
//	r := gin.Default()
//	api := r.Group("/api")
//	gin.Register(api, srv) // POST /api/v1/nfts/mint
func Register(router gin.IRoutes, srv *httpx.Server) {
	var handler http.Handler = srv
	if group, ok := router.(interface{ BasePath() string }); ok {
		if base := strings.TrimSuffix(group.BasePath(), "/"); base != "" {
			handler = http.StripPrefix(base, srv)
		}
	}
	router.Any("/v1/*path", gin.WrapH(handler))
}
