// internal/server/models.go
package server

import "shoe-recommender/internal/models"

// RecommendationRequest is the POST /api/v1/recommendations body.
type RecommendationRequest struct {
	Gender           string                            `json:"gender"`
	Size             float64                           `json:"size"`
	Width            string                            `json:"width,omitempty"`
	BrandPreferences map[string]models.BrandPreference `json:"brandPreferences,omitempty"`
	ColorPreferences []string                          `json:"colorPreferences,omitempty"`
	Limit            int                               `json:"limit,omitempty"`
}

// RecommendationResponse carries the ranked result list.
type RecommendationResponse struct {
	RequestID string                 `json:"requestId"`
	Count     int                    `json:"count"`
	Results   []models.ScoredProduct `json:"results"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}
