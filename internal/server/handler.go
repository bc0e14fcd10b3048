// internal/server/handler.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"shoe-recommender/internal/common/errors"
	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/models"
)

// requestSchema validates the recommendation request body before it is
// decoded. Size is accepted as a number or a numeric string since shoppers'
// clients have sent both.
const requestSchema = `{
	"type": "object",
	"required": ["gender", "size"],
	"additionalProperties": false,
	"properties": {
		"gender": {"type": "string", "minLength": 1},
		"size": {"type": ["number", "string"]},
		"width": {"type": "string"},
		"brandPreferences": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"models": {"type": "array", "items": {"type": "string"}},
					"exclude": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"colorPreferences": {"type": "array", "items": {"type": "string"}},
		"limit": {"type": "integer", "minimum": 1}
	}
}`

var compiledRequestSchema = gojsonschema.NewStringLoader(requestSchema)

// Recommender is the service surface the handler depends on.
type Recommender interface {
	Recommend(ctx context.Context, query models.Query) ([]models.ScoredProduct, error)
}

type RecommendationHandler struct {
	service Recommender
	logger  logger.Logger
}

func NewRecommendationHandler(service Recommender, log logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"handler": "recommendations"}),
	}
}

func (h *RecommendationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rid := GetRequestID(r)

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, rid, http.StatusBadRequest, "PARSE_ERROR", "request body is not valid JSON")
		return
	}

	if err := validateRequest(body); err != nil {
		h.writeError(w, rid, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	query, err := decodeQuery(body)
	if err != nil {
		h.writeError(w, rid, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}

	results, err := h.service.Recommend(r.Context(), query)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeInvalidQuery) {
			h.writeError(w, rid, http.StatusBadRequest, string(errors.ErrCodeInvalidQuery), err.Error())
			return
		}
		h.logger.Error("recommendation failed", map[string]interface{}{
			"requestId": rid,
			"error":     err.Error(),
		})
		h.writeError(w, rid, http.StatusInternalServerError, "INTERNAL_ERROR", "recommendation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, RecommendationResponse{
		RequestID: rid,
		Count:     len(results),
		Results:   results,
	})
}

func validateRequest(body json.RawMessage) error {
	result, err := gojsonschema.Validate(compiledRequestSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// decodeQuery builds the pipeline query, coercing a string size to a number.
func decodeQuery(body json.RawMessage) (models.Query, error) {
	var req struct {
		RecommendationRequest
		Size json.RawMessage `json:"size"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return models.Query{}, fmt.Errorf("decode request: %w", err)
	}

	var num json.Number
	if err := json.Unmarshal(req.Size, &num); err != nil {
		var s string
		if err := json.Unmarshal(req.Size, &s); err != nil {
			return models.Query{}, fmt.Errorf("size is not numeric: %s", req.Size)
		}
		num = json.Number(strings.TrimSpace(s))
	}
	size, err := num.Float64()
	if err != nil {
		return models.Query{}, fmt.Errorf("size is not numeric: %q", num.String())
	}

	return models.Query{
		Gender:           req.Gender,
		Size:             size,
		Width:            req.Width,
		BrandPreferences: req.BrandPreferences,
		ColorPreferences: req.ColorPreferences,
		Limit:            req.Limit,
	}, nil
}

func (h *RecommendationHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *RecommendationHandler) writeError(w http.ResponseWriter, rid string, status int, code, msg string) {
	h.writeJSON(w, status, ErrorResponse{RequestID: rid, Code: code, Error: msg})
}
