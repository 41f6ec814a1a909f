package http

import (
	"net/http"
	"strings"

	translationcmd "github.com/goliatone/go-cms-autotranslate/internal/commands/translation"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	schemavalidation "github.com/goliatone/go-cms-autotranslate/internal/validation"
)

type callbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (api *API) handleTranslate(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var cmd translationcmd.TranslateDocumentCommand
	if err := decodeValidated(raw, schemavalidation.SchemaTranslate, &cmd); err != nil {
		writeError(w, err)
		return
	}

	var result translation.TranslateResult
	cmd.Result = &result
	if err := api.translate.Execute(r.Context(), cmd); err != nil {
		api.logger.Error("http.translate.failed", "document_id", cmd.DocumentID, "content_type", cmd.ContentType, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	if api.callbackSecret == "" {
		api.logger.Warn("http.callback.unauthenticated", "remote_addr", r.RemoteAddr)
	} else if !bearerMatches(r, api.callbackSecret) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "invalid callback token"})
		return
	}

	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var cmd translationcmd.ApplyTranslationCommand
	if err := decodeValidated(raw, schemavalidation.SchemaCallback, &cmd); err != nil {
		writeError(w, err)
		return
	}
	if contentType := strings.TrimSpace(r.URL.Query().Get("contentType")); contentType != "" {
		cmd.ContentType = contentType
	}

	var result translation.CallbackResult
	cmd.Result = &result
	if err := api.apply.Execute(r.Context(), cmd); err != nil {
		api.logger.Error("http.callback.failed",
			"document_id", cmd.DocumentID,
			"content_type", cmd.ContentType,
			"locale", cmd.Locale,
			"error", err,
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, callbackResponse{Success: result.Success, Message: result.Message})
}

func (api *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.PathValue("jobId"))
	since := parseSinceQuery(r.URL.Query().Get("since"))
	writeJSON(w, http.StatusOK, api.progress.Progress(r.Context(), jobID, since))
}
