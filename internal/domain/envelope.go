package domain

import "encoding/json"

// EnvelopeSuccessCode is the only envelope code that denotes success.
const EnvelopeSuccessCode = 200

// Envelope is the backend's uniform response wrapper. Code is the logical
// status and is independent of the HTTP status.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e Envelope) OK() bool {
	return e.Code == EnvelopeSuccessCode
}
