package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type envelope struct {
	Error *response.ErrorBody `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

// The handlers below fail validation before touching their services, so nil
// services are never dereferenced.
func TestRequestValidation(t *testing.T) {
	results := NewResultHandler(nil)
	units := NewUnitHandler(nil)
	portal := NewStudentPortalHandler(nil, nil, nil, nil, nil)
	years := NewAcademicYearHandler(nil)

	r := gin.New()
	r.POST("/results", results.CreateResult)
	r.PUT("/results/:id", results.UpdateResult)
	r.POST("/units", units.Create)
	r.POST("/projection", portal.ProjectTarget)
	r.GET("/projection", portal.GetProjections)
	r.POST("/academic-years", years.CreateAcademicYear)
	r.POST("/academic-years/:id/activate", years.ActivateAcademicYear)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		field  string
	}{
		{"score above 100", http.MethodPost, "/results", `{"student_id":1,"unit_id":2,"score":101}`, "score"},
		{"score below 0", http.MethodPost, "/results", `{"student_id":1,"unit_id":2,"score":-1}`, "score"},
		{"score missing", http.MethodPost, "/results", `{"student_id":1,"unit_id":2}`, "score"},
		{"update score out of range", http.MethodPut, "/results/4", `{"score":250}`, "score"},
		{"credit units above 10", http.MethodPost, "/units", `{"code":"MIT201","name":"Data Structures","credit_units":11,"academic_year_id":1}`, "credit_units"},
		{"malformed unit code", http.MethodPost, "/units", `{"code":"mit 201","name":"Data Structures","credit_units":3,"academic_year_id":1}`, "code"},
		{"target not an honours threshold", http.MethodPost, "/projection", `{"target_gpa":65,"remaining_units":4}`, "target_gpa"},
		{"too many remaining units", http.MethodPost, "/projection", `{"target_gpa":70,"remaining_units":21}`, "remaining_units"},
		{"remaining units query out of range", http.MethodGet, "/projection?remaining_units=25", ``, "remaining_units"},
		{"semester 3", http.MethodPost, "/academic-years", `{"year":"2024/2025","semester":3}`, "semester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, tt.method, tt.target, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, response.ErrValidation, env.Error.Code)
			assert.Contains(t, env.Error.Fields, tt.field)
		})
	}
}

func TestInvalidIDParam(t *testing.T) {
	r := gin.New()
	r.PUT("/results/:id", NewResultHandler(nil).UpdateResult)
	r.POST("/academic-years/:id/activate", NewAcademicYearHandler(nil).ActivateAcademicYear)

	for _, target := range []string{"/results/abc", "/academic-years/x/activate"} {
		method := http.MethodPost
		if strings.HasPrefix(target, "/results") {
			method = http.MethodPut
		}
		w, env := doJSON(t, r, method, target, `{"score":50}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		require.NotNil(t, env.Error)
		assert.Equal(t, response.ErrInvalidID, env.Error.Code)
	}
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed(nil, "https://anything.example"))
	allowed := []string{"https://portal.jkuat.ac.ke"}
	assert.True(t, originAllowed(allowed, "https://PORTAL.jkuat.ac.ke"))
	assert.False(t, originAllowed(allowed, "https://evil.example"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "0m 42s"},
		{3*time.Hour + 5*time.Minute + 1*time.Second, "3h 5m 1s"},
		{50*time.Hour + 2*time.Minute, "2d 2h 2m 0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}
