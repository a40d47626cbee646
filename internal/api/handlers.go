package api

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/bagtoad/slidegen/internal/assets"
	"github.com/bagtoad/slidegen/internal/slide"
	"github.com/gin-gonic/gin"
)

const maxQRSize = 1024

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sampling": h.deps.Sampler != nil})
}

// slide renders a posted attribute set.
func (h *handlers) slide(c *gin.Context) {
	var a slide.AttributeSet
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, _ := h.deps.Drawer.Draw(a)
	writePNG(c, img)
}

// sample draws from the configured pools. mode=pair returns slide 1 or 2 of
// a fresh pair (identical=true for a label-1 draw); mode=complex returns a
// complex slide.
func (h *handlers) sample(c *gin.Context) {
	if h.deps.Sampler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no sampler configured"})
		return
	}

	var a slide.AttributeSet
	switch mode := c.DefaultQuery("mode", "pair"); mode {
	case "pair":
		which := c.DefaultQuery("slide", "1")
		if which != "1" && which != "2" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slide must be 1 or 2"})
			return
		}
		identical, _ := strconv.ParseBool(c.DefaultQuery("identical", "false"))

		h.mu.Lock()
		p := h.deps.Sampler.Draw(c.Request.Context(), identical)
		h.mu.Unlock()

		a = p.First
		if which == "2" {
			a = p.Second
		}
		c.Header("X-Style-Label", strconv.Itoa(p.StyleLabel))
		c.Header("X-Font-Label", strconv.Itoa(p.FontLabel))
		c.Header("X-Differences", strings.Join(p.Differences, ","))
	case "complex":
		h.mu.Lock()
		a = h.deps.Sampler.Complex(c.Request.Context())
		h.mu.Unlock()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode " + strconv.Quote(mode)})
		return
	}

	img, _ := h.deps.Drawer.Draw(a)
	writePNG(c, img)
}

// qr returns a placeholder QR logo for the "text" query param.
func (h *handlers) qr(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = "slidegen"
	}
	size := 200
	if s := c.Query("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxQRSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 1024"})
			return
		}
		size = v
	}
	img, err := assets.QR(text, size, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	writePNG(c, img)
}

func writePNG(c *gin.Context, img image.Image) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
