package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, reqID string, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccessEnvelope(t *testing.T) {
	w, body := serve(t, "req-42", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"gpa": 71.64})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body.Error)
	assert.Equal(t, map[string]any{"gpa": 71.64}, body.Data)
	assert.Equal(t, "req-42", body.Metadata.RequestID)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, body.Metadata.Timestamp)
}

func TestFailEnvelope(t *testing.T) {
	w, body := serve(t, "", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"score": "score must be 100 or less"})
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, body.Data)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrValidation, body.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), body.Error.Message)
	assert.Equal(t, "score must be 100 or less", body.Error.Fields["score"])
	assert.Len(t, body.Metadata.RequestID, 36)
}

func TestAbortFailStopsChain(t *testing.T) {
	r := gin.New()
	reached := false
	r.GET("/", func(c *gin.Context) { AbortFail(c, http.StatusForbidden, ErrPermissionDenied) }, func(c *gin.Context) { reached = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Body.String(), string(ErrPermissionDenied))
}

func TestRequestIDRejectsUnsafeValues(t *testing.T) {
	for _, id := range []string{"has space", strings.Repeat("x", 65), "tab\tid"} {
		_, body := serve(t, id, func(c *gin.Context) { Success(c, http.StatusOK, nil) })
		assert.NotEqual(t, id, body.Metadata.RequestID)
		assert.Len(t, body.Metadata.RequestID, 36)
	}
}

func TestPaging(t *testing.T) {
	tests := []struct {
		name                     string
		page, perPage            int
		wantPage, wantSize, wOff int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage, 0},
		{"third page", 3, 20, 3, 20, 40},
		{"capped size", 2, 500, 2, MaxPerPage, MaxPerPage},
		{"negative page", -4, 5, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size, offset := Paging(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wOff, offset)
		})
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, &Pagination{Page: 1, PerPage: 10, TotalItems: 21, TotalPages: 3}, NewPagination(1, 10, 21))
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}

func TestGetMessageFallback(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("SOMETHING_NEW")))
	assert.Equal(t, "No academic year is active.", GetMessage(ErrNoActiveYear))
}
