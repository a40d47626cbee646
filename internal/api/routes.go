// Package api serves rendered slides over HTTP for previewing attribute
// sets and the configured pools.
package api

import (
	"image"
	"sync"

	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/bagtoad/slidegen/internal/slide"
	"github.com/gin-gonic/gin"
)

// Drawer renders an attribute set in memory.
type Drawer interface {
	Draw(a slide.AttributeSet) (image.Image, []slide.Rect)
}

// Deps are the collaborators the handlers use. Sampler may be nil, which
// disables /api/sample.
type Deps struct {
	Drawer  Drawer
	Sampler *sampler.Sampler
}

type handlers struct {
	deps Deps
	// mu serialises sampler access; its random source is not goroutine-safe.
	mu sync.Mutex
}

// RegisterRoutes mounts the preview endpoints under /api.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	h := &handlers{deps: deps}
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/slide", h.slide)
		api.GET("/sample", h.sample)
		api.GET("/qr", h.qr)
	}
}
