package http

import "encoding/json"

// APIResponse is the envelope every endpoint answers with. Status mirrors
// the HTTP status; Data holds the payload or the list of errors.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// rawResponse is APIResponse as read by the client, with Data left undecoded.
type rawResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ValidationError represents validation error detail. It shares the JSON
// shape of AppError so clients decode both the same way.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"current_price"`
	Message string                 `json:"message,omitempty" example:"current_price is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
