package models

// WebSocket message envelope pushed to clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AnomalyEvent notifies a client that async analysis finished for a session.
type AnomalyEvent struct {
	SessionID string          `json:"session_id"`
	Status    AnomalySeverity `json:"status"`
	Reason    string          `json:"reason"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
