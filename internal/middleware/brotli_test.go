package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brotliRouter(body string) *gin.Engine {
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 64}))
	r.GET("/body", func(c *gin.Context) {
		c.String(http.StatusOK, body)
	})
	r.GET("/stream", func(c *gin.Context) {
		c.Writer.WriteString("head;")
		c.Writer.Flush()
		c.Writer.WriteString(body)
	})
	return r
}

func brotliGet(r *gin.Engine, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept-Encoding", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBrotli(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	out, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	return string(out)
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	body := strings.Repeat("weighted mean average ", 20)
	w := brotliGet(brotliRouter(body), "/body", "gzip, br;q=0.9")

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
	assert.Equal(t, body, decodeBrotli(t, w))
}

func TestBrotliLeavesSmallBodies(t *testing.T) {
	w := brotliGet(brotliRouter("tiny"), "/body", "br")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())
}

func TestBrotliSkipsClientsWithoutSupport(t *testing.T) {
	body := strings.Repeat("x", 200)
	w := brotliGet(brotliRouter(body), "/body", "gzip")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}

func TestBrotliFlushBeforeThresholdStaysPlain(t *testing.T) {
	body := strings.Repeat("y", 200)
	w := brotliGet(brotliRouter(body), "/stream", "br")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "head;"+body, w.Body.String())
}
