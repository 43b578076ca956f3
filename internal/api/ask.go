package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askdb/askdb/internal/ask"
)

const maxAskBodyBytes = 2 << 20

type askRequest struct {
	Question string `json:"question" validate:"notblank,max=8000"`
	Schema   string `json:"schema" validate:"max=1000000"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Asker == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}

	var req askRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if field, err := validateRequest(req); err != nil {
		if field == "Question" && isBlankFailure(err) {
			writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_REQUEST", "invalid ask request", false, map[string]any{"details": err.Error()})
		return
	}

	result, err := deps.Asker.Ask(r.Context(), ask.Question{Text: req.Question, SchemaOverride: req.Schema})
	if err != nil {
		writeAskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Asker == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}
	schemaText, err := deps.Asker.Schema(r.Context())
	if err != nil {
		writeAskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": schemaText})
}

func writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	var askErr *ask.Error
	if !errors.As(err, &askErr) {
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to answer question", true, map[string]any{"details": err.Error()})
		return
	}
	switch askErr.Kind {
	case ask.KindInvalidQuestion:
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
	case ask.KindSchemaFetch:
		writeError(r.Context(), w, http.StatusServiceUnavailable, "SCHEMA_FETCH_FAILED", "failed to read database schema", true, map[string]any{"details": askErr.Err.Error()})
	case ask.KindModelUnavailable:
		writeError(r.Context(), w, http.StatusBadGateway, "MODEL_UNAVAILABLE", "language model did not return a usable reply", true, map[string]any{"details": askErr.Err.Error()})
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to answer question", true, map[string]any{"details": askErr.Error()})
	}
}
