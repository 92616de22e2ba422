package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewServer builds the liveness-probe HTTP server. External process
// supervisors GET /healthz and expect a 200; there are no business
// semantics behind it.
func NewServer(addr string) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return &http.Server{Addr: addr, Handler: router}
}
