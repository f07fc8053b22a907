package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/app"
	"adpulse/internal/testkit"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)

	service := app.NewImpactService(kit.ActionRepository())
	a, err := NewApp(Config{Port: "0", Currency: "AED"}, service)
	require.NoError(t, err)
	return a
}

func doRequest(t *testing.T, a *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleListAccounts(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/api/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Accounts []string `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []string{"demo-account"}, payload.Accounts)
}

func TestHandleAccountImpact(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/api/accounts/demo-account/impact?after_days=30", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Summary struct {
			TotalActions int     `json:"total_actions"`
			WinRate      float64 `json:"win_rate"`
		} `json:"summary"`
		Confidence struct {
			Level string `json:"confidence"`
		} `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, testkit.DefaultActionConfig().ActionCount, report.Summary.TotalActions)
	assert.Contains(t, []string{"High", "Medium", "Low"}, report.Confidence.Level)
}

func TestHandleAccountImpactRejectsBadWindow(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/api/accounts/demo-account/impact?after_days=7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestHandleNormalize(t *testing.T) {
	a := newTestApp(t)

	body := `{"columns":{"spend":["AED 100.50","1,234.56",0.75,"SAR 50","",null]}}`
	rec := doRequest(t, a, http.MethodPost, "/api/normalize", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Columns map[string]struct {
			Values    []float64 `json:"values"`
			Fallbacks int       `json:"fallbacks"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	spend := payload.Columns["spend"]
	assert.Equal(t, []float64{100.50, 1234.56, 0.75, 50.0, 0.0, 0.0}, spend.Values)
	assert.Equal(t, 2, spend.Fallbacks)
}

func TestHandleNormalizeRejectsEmptyBody(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodPost, "/api/normalize", `{"columns":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleNormalizeRejectsBlankColumnName(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodPost, "/api/normalize", `{"columns":{" ":["1","2"]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestHandleUploadActions(t *testing.T) {
	a := newTestApp(t)

	body := `{"actions":[
		{"target_text":"kw upload","action_type":"bid_down","market_tag":"Normal",
		 "is_validated":true,"decision_impact":75,"confidence_weight":0.8,
		 "before_spend":100,"before_sales":300,"observed_after_spend":60,"after_sales":320,
		 "applied_at":"2026-07-15T00:00:00Z"}
	]}`
	rec := doRequest(t, a, http.MethodPost, "/api/accounts/upload-account/actions", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Imported)

	impactRec := doRequest(t, a, http.MethodGet, "/api/accounts/upload-account/impact", "")
	require.Equal(t, http.StatusOK, impactRec.Code)

	var report struct {
		Summary struct {
			TotalActions int `json:"total_actions"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(impactRec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.TotalActions)
}

func TestHandleUploadActionsRejectsBadBatch(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodPost, "/api/accounts/upload-account/actions", `{"actions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")

	rec = doRequest(t, a, http.MethodPost, "/api/accounts/upload-account/actions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAccountExport(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/api/accounts/demo-account/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestHandleIndex(t *testing.T) {
	a := newTestApp(t)

	rec := doRequest(t, a, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "demo-account")
}
