package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adpulse/domain/core"
	"adpulse/domain/impact"
	"adpulse/domain/ingest"
	"adpulse/internal/errors"
)

// The before window is fixed; the after window is caller-selectable to
// 14, 30 or 60 days.
const (
	defaultBeforeDays = 14
	defaultAfterDays  = 14
)

var allowedAfterDays = map[int]bool{14: true, 30: true, 60: true}

// handleIndex renders the dashboard shell
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.service.ListAccounts(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	data := map[string]interface{}{
		"Accounts": accounts,
		"Currency": a.currency,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		a.logger.Error("failed to render index: %v", err)
	}
}

// handleListAccounts returns every account with stored actions
func (a *App) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.service.ListAccounts(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// handleAccountImpact returns the confidence-annotated impact report
func (a *App) handleAccountImpact(w http.ResponseWriter, r *http.Request) {
	account := core.AccountID(chi.URLParam(r, "id"))

	afterDays := defaultAfterDays
	if raw := r.URL.Query().Get("after_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !allowedAfterDays[parsed] {
			a.writeError(w, errors.InvalidInput("after_days must be 14, 30 or 60"))
			return
		}
		afterDays = parsed
	}
	includeActions := r.URL.Query().Get("include_actions") == "1"

	report, err := a.service.GetImpactReport(r.Context(), account, defaultBeforeDays, afterDays, includeActions)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

// normalizeRequest carries raw columns for a cleaning preview. Cells may be
// JSON strings, numbers or nulls.
type normalizeRequest struct {
	Columns map[string][]interface{} `json:"columns"`
}

// handleNormalize previews normalization of raw columns
func (a *App) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("request body must be JSON with a columns object"))
		return
	}
	if len(req.Columns) == 0 {
		a.writeError(w, errors.InvalidInput("columns must not be empty"))
		return
	}

	columns := make(map[core.ColumnKey]ingest.Column, len(req.Columns))
	for name, raw := range req.Columns {
		key, err := core.ParseColumnKey(name)
		if err != nil {
			a.writeError(w, errors.InvalidInput("column names must not be blank"))
			return
		}
		columns[key] = ingest.ColumnFromAny(raw)
	}

	cleaned, err := a.service.NormalizePreview(r.Context(), columns)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"columns": cleaned})
}

// uploadActionsRequest carries a batch of optimization actions for import.
type uploadActionsRequest struct {
	Actions []impact.ActionRecord `json:"actions"`
}

// handleUploadActions imports a batch of actions for the account
func (a *App) handleUploadActions(w http.ResponseWriter, r *http.Request) {
	account, err := core.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, errors.InvalidInput("account ID is required"))
		return
	}

	var req uploadActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("request body must be JSON with an actions array"))
		return
	}

	imported, err := a.service.ImportActions(r.Context(), account, req.Actions)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// handleAccountExport streams the impact report as an xlsx workbook
func (a *App) handleAccountExport(w http.ResponseWriter, r *http.Request) {
	account := core.AccountID(chi.URLParam(r, "id"))

	report, err := a.service.GetImpactReport(r.Context(), account, defaultBeforeDays, defaultAfterDays, true)
	if err != nil {
		a.writeError(w, err)
		return
	}

	payload, err := a.buildImpactWorkbook(report)
	if err != nil {
		a.writeError(w, errors.Wrap(err, "building export workbook"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="impact_`+account.String()+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		a.logger.Error("failed to stream export: %v", err)
	}
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	a.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
