package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

type unitPayload struct {
	Code  string `json:"code" binding:"required,unit_code"`
	RegNo string `json:"registration_number" binding:"required,reg_number"`
	Score *int   `json:"score" binding:"required,min=0,max=100"`
}

type listQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

func bindBody(body string) map[string]string {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst unitPayload
	return Bind(c, &dst)
}

func TestBindCustomTags(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"code":"MIT201","registration_number":"SCT211-0001/2021","score":72}`, nil},
		{"hyphenated code", `{"code":"CS-110","registration_number":"SCT211-0001/2021","score":0}`, nil},
		{"lower-case code", `{"code":"mit201","registration_number":"SCT211-0001/2021","score":72}`, []string{"code"}},
		{"bad registration", `{"code":"MIT201","registration_number":"#1","score":72}`, []string{"registration_number"}},
		{"score over range", `{"code":"MIT201","registration_number":"SCT211-0001/2021","score":101}`, []string{"score"}},
		{"missing everything", `{}`, []string{"code", "registration_number", "score"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := bindBody(tt.body)
			if tt.fields == nil {
				assert.Nil(t, fields)
				return
			}
			assert.Len(t, fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestBindTranslatesCustomMessage(t *testing.T) {
	fields := bindBody(`{"code":"mit201","registration_number":"SCT211-0001/2021","score":72}`)
	assert.Equal(t, "code must be an upper-case unit code such as MIT201", fields["code"])
}

func TestBindMalformedJSON(t *testing.T) {
	fields := bindBody(`{"code":`)
	assert.Contains(t, fields, "detail")
}

func TestBindQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=-1", nil)

	var q listQuery
	fields := BindQuery(c, &q)
	assert.Contains(t, fields, "page")
}
