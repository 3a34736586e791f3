// Package envelope validates backend response envelopes and classifies every
// transport outcome into a domain.Result.
package envelope

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bnema/coffeeviz-cli/internal/domain"
)

const (
	MessageForbidden    = "access denied."
	MessageNotFound     = "resource not found."
	MessageServerFault  = "internal server error."
	MessageRequest      = "request failed"
	MessageNetwork      = "network error"
	messageUnauthorized = "unauthorized"
)

// Outcome is what the transport produced for one call. Err is set only when
// no HTTP response was received.
type Outcome struct {
	Err        error
	StatusCode int
	Status     string
	Body       []byte
}

// Classify maps an outcome onto exactly one Result. Rules are checked in
// order and the first match wins.
func Classify(o Outcome) domain.Result {
	if o.Err != nil {
		return domain.Fail(domain.FailureTransport, o.Err.Error())
	}

	switch o.StatusCode {
	case http.StatusUnauthorized:
		return domain.Fail(domain.FailureUnauthorized, messageOr(o.Body, messageUnauthorized))
	case http.StatusForbidden:
		return domain.Fail(domain.FailureForbidden, MessageForbidden)
	case http.StatusNotFound:
		return domain.Fail(domain.FailureNotFound, MessageNotFound)
	case http.StatusInternalServerError:
		return domain.Fail(domain.FailureServer, MessageServerFault)
	}

	if !isSuccessStatus(o.StatusCode) {
		fallback := strings.TrimSpace(o.Status)
		if fallback == "" {
			fallback = MessageNetwork
		}
		return domain.Fail(domain.FailureApplication, messageOr(o.Body, fallback))
	}

	env, ok := Decode(o.Body)
	if !ok {
		return domain.Fail(domain.FailureApplication, MessageRequest)
	}
	if !env.OK() {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = MessageRequest
		}
		return domain.Fail(domain.FailureApplication, message)
	}

	return domain.Success(env.Data)
}

// Decode parses body as an envelope. It reports false for anything that is
// not a JSON object carrying a code field.
func Decode(body []byte) (domain.Envelope, bool) {
	var raw struct {
		Code    *int            `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.Code == nil {
		return domain.Envelope{}, false
	}

	return domain.Envelope{Code: *raw.Code, Message: raw.Message, Data: raw.Data}, true
}

func messageOr(body []byte, fallback string) string {
	var raw struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err == nil {
		if message := strings.TrimSpace(raw.Message); message != "" {
			return message
		}
	}
	return fallback
}

func isSuccessStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
