package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/embedding"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

func newServer(provider embedding.Provider) *echo.Echo {
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
	svc := reconcile.NewService(similarity.NewRecommender(provider, similarity.Options{}), nil, nil, logger, reconcile.Options{})

	e := echo.New()
	NewHandler(svc, logger).RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/recommend-mapping", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecommend(t *testing.T) {
	vectors := map[string][]float64{
		"email":      {1, 0},
		"first_name": {0, 1},
		"mail":       {0.9, 0.1},
		"given":      {0.1, 0.9},
	}
	provider := embedding.ProviderFunc{
		Name: "table",
		Fn: func(_ context.Context, text string) ([]float64, error) {
			return vectors[text], nil
		},
	}
	e := newServer(provider)

	rec := post(e, `{"csv1Fields":["email","first_name"],"csv2Fields":["given","mail"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mail", resp.Recommendations["email"].BestMatch)
	assert.Equal(t, "given", resp.Recommendations["first_name"].BestMatch)
	assert.Contains(t, rec.Body.String(), `"bestMatch"`)
}

func TestRecommendInvalidInput(t *testing.T) {
	e := newServer(embedding.NewHashingProvider(64))

	tests := []struct {
		name string
		body string
	}{
		{"missing target fields", `{"csv2Fields":["a"]}`},
		{"missing source fields", `{"csv1Fields":["a"]}`},
		{"not an array", `{"csv1Fields":"a","csv2Fields":["b"]}`},
		{"non-string element", `{"csv1Fields":["a",1],"csv2Fields":["b"]}`},
		{"null", `{"csv1Fields":null,"csv2Fields":["b"]}`},
		{"malformed", `{"csv1Fields":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(e, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid input arrays"}`, rec.Body.String())
		})
	}
}

func TestRecommendEmbeddingFailure(t *testing.T) {
	provider := embedding.ProviderFunc{
		Name: "failing",
		Fn: func(context.Context, string) ([]float64, error) {
			return nil, errors.New("model offline")
		},
	}
	e := newServer(provider)

	rec := post(e, `{"csv1Fields":["a"],"csv2Fields":["b"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRecommendEmptyLists(t *testing.T) {
	e := newServer(embedding.NewHashingProvider(64))

	rec := post(e, `{"csv1Fields":[],"csv2Fields":["b"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recommendations":{}}`, rec.Body.String())
}
