package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/middleware"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/service"
)

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleGenerate(t *testing.T) {
	h := NewGeneratorHandler(service.NewGeneratorService())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLen    int
	}{
		{"empty body uses defaults", "", http.StatusOK, 16},
		{"custom length", `{"length": 24, "symbols": false}`, http.StatusOK, 24},
		{"too short", `{"length": 4}`, http.StatusBadRequest, 0},
		{"too long", `{"length": 65}`, http.StatusBadRequest, 0},
		{"no classes", `{"uppercase":false,"lowercase":false,"numbers":false,"symbols":false}`, http.StatusBadRequest, 0},
		{"malformed", `{"length":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.HandleGenerate, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeBody[model.GenerateResponse](t, rec)
			assert.Len(t, resp.Password, tt.wantLen)
			assert.Equal(t, tt.wantLen, resp.Length)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	h := NewGeneratorHandler(service.NewGeneratorService())
	body := `{"length": 16, "pad": "` + strings.Repeat("x", maxBodyBytes) + `"}`

	rec := postJSON(t, h.HandleGenerate, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type stubChecker struct{ result breach.Result }

func (s stubChecker) Check(context.Context, string) breach.Result { return s.result }

func (s stubChecker) CheckMany(_ context.Context, pws []string, _ int) []breach.Result {
	out := make([]breach.Result, len(pws))
	for i := range out {
		out[i] = s.result
	}
	return out
}

func TestHandleAnalyze(t *testing.T) {
	h := NewCheckHandler(service.NewSecurityService(stubChecker{}))

	rec := postJSON(t, h.HandleAnalyze, `{"password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "breach")

	strength := body["strength"].(map[string]any)
	assert.Equal(t, "weak", strength["rating"])
	assert.Equal(t, float64(4), strength["score"])

	rec = postJSON(t, h.HandleAnalyze, `{"password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCheck(t *testing.T) {
	tests := []struct {
		name       string
		result     breach.Result
		wantStatus string
		wantCommon bool
	}{
		{"breached", breach.Result{Breached: true, Count: 9545824}, "breached", true},
		{"not breached", breach.Result{}, "not_breached", false},
		{"lookup failed", breach.Result{LookupFailed: true, Reason: "timeout"}, "undetermined", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckHandler(service.NewSecurityService(stubChecker{result: tt.result}))

			rec := postJSON(t, h.HandleCheck, `{"password":"password"}`)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decodeBody[model.SecurityReport](t, rec)
			require.NotNil(t, resp.Breach)
			assert.Equal(t, breach.Status(tt.wantStatus), resp.Breach.Status)
			assert.Equal(t, tt.wantCommon, resp.Breach.Common)
			assert.Equal(t, tt.result.LookupFailed, resp.Breach.LookupFailed)
		})
	}
}

func withUser(req *http.Request, id int64) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), id))
}

func jsonBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}
