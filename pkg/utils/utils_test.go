package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Fields []string `json:"fields" validate:"required,min=1"`
	Format string   `json:"format" validate:"omitempty,dateformat"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   sampleRequest
		wantErr string
	}{
		{name: "valid", input: sampleRequest{Fields: []string{"a"}, Format: "yyyy-MM-dd"}},
		{name: "valid without format", input: sampleRequest{Fields: []string{"a"}}},
		{name: "missing fields", input: sampleRequest{}, wantErr: "Fields"},
		{name: "bad format", input: sampleRequest{Fields: []string{"a"}, Format: "QQ"}, wantErr: "dateformat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("dd/MM/yyyy", "dateformat"))
	assert.NoError(t, ValidateValue("dd/MM/yyyy", "outputdateformat"))
	assert.Error(t, ValidateValue("M/d/yyyy", "outputdateformat"))
	assert.NoError(t, ValidateValue("M/d/yyyy", "dateformat"))
	assert.Error(t, ValidateValue("", "required"))
}

func TestBindRequest(t *testing.T) {
	e := echo.New()

	t.Run("binds and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fields":["a","b"]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		v, err := BindRequest[sampleRequest](c)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, v.Fields)
	})

	t.Run("invalid body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fields":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		_, err := BindRequest[sampleRequest](c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("failed validation is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fields":[]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		_, err := BindRequest[sampleRequest](c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}
