package http

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	schemavalidation "github.com/goliatone/go-cms-autotranslate/internal/validation"
)

const maxBodyBytes = 4 << 20

var errBodyRequired = errors.New("request body is required")

type errorResponse struct {
	Error   string                             `json:"error"`
	Code    string                             `json:"code,omitempty"`
	Message string                             `json:"message,omitempty"`
	Issues  []schemavalidation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func readBody(r *http.Request) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errBodyRequired
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errBodyRequired
	}
	return raw, nil
}

// decodeJSON decodes raw into target keeping numbers as json.Number.
func decodeJSON(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

// decodeValidated checks raw against the named schema before decoding it into
// target.
func decodeValidated(raw []byte, schemaName string, target any) error {
	var document any
	if err := decodeJSON(raw, &document); err != nil {
		return badRequest(err)
	}
	if err := schemavalidation.Validate(schemaName, document); err != nil {
		return err
	}
	if err := decodeJSON(raw, target); err != nil {
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid request body").WithTextCode("AUTOTRANSLATE_BAD_REQUEST")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	resp := errorResponse{Message: err.Error()}
	var categorized *goerrors.Error
	if errors.As(err, &categorized) {
		resp.Code = categorized.TextCode
	}

	if errors.Is(err, schemavalidation.ErrSchemaValidation) {
		resp.Error = "validation_failed"
		resp.Issues = schemavalidation.Issues(err)
		return http.StatusBadRequest, resp
	}

	var fieldErrs validation.Errors
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation),
		errors.As(err, &fieldErrs),
		errors.Is(err, errBodyRequired):
		resp.Error = "bad_request"
		return http.StatusBadRequest, resp
	case goerrors.IsCategory(err, translation.CategoryMisconfigured):
		resp.Error = "misconfigured"
		return http.StatusBadRequest, resp
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		resp.Error = "not_found"
		return http.StatusNotFound, resp
	case goerrors.IsCategory(err, goerrors.CategoryExternal):
		resp.Error = "upstream_failure"
		return http.StatusBadGateway, resp
	}

	resp.Error = "internal_error"
	return http.StatusInternalServerError, resp
}

func parseSinceQuery(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// bearerMatches compares the Authorization bearer token with secret in
// constant time.
func bearerMatches(r *http.Request, secret string) bool {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	token = strings.TrimSpace(token)
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
