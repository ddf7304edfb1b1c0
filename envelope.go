package jsend

import (
	"encoding/json"
	"net/http"
)

// Status is the outcome category of an envelope.
type Status string

// Envelope statuses. StatusError is used for client-attributable failures and
// StatusFail for server-attributable ones.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusFail    Status = "fail"
)

// Default HTTP status codes used by the builders.
const (
	DefaultSuccessCode        = http.StatusOK
	DefaultClientErrorCode    = http.StatusBadRequest
	ClientValidationErrorCode = http.StatusUnprocessableEntity
	DefaultServerErrorCode    = http.StatusInternalServerError
)

// Envelope is the uniform response payload.
//
// Message is only serialized for StatusError and StatusFail envelopes; Data
// is always serialized, as null when absent.
type Envelope struct {
	Code    int
	Status  Status
	Data    any
	Message string
}

// wireEnvelope fixes the field names and presence rules on the wire.
type wireEnvelope struct {
	Code    int     `json:"code"`
	Status  Status  `json:"status"`
	Data    any     `json:"data"`
	Message *string `json:"message,omitempty"`
}

// Success builds a success envelope. httpStatus defaults to 200 and should
// lie in [200, 299] when given.
func Success(data any, httpStatus ...int) Envelope {
	return Envelope{
		Code:   codeOrDefault(httpStatus, DefaultSuccessCode),
		Status: StatusSuccess,
		Data:   data,
	}
}

// ClientError builds an envelope for a request rejected because of invalid
// data or call conditions. httpStatus defaults to 400 and should lie in
// [400, 499] when given.
func ClientError(message string, data any, httpStatus ...int) Envelope {
	return Envelope{
		Code:    codeOrDefault(httpStatus, DefaultClientErrorCode),
		Status:  StatusError,
		Data:    data,
		Message: message,
	}
}

// ClientValidationError builds a client error envelope with code 422.
func ClientValidationError(message string, data any) Envelope {
	return ClientError(message, data, ClientValidationErrorCode)
}

// ServerError builds an envelope for a request that failed because of a
// problem on the server. httpStatus defaults to 500 and should lie in
// [500, 599] when given.
func ServerError(message string, data any, httpStatus ...int) Envelope {
	return Envelope{
		Code:    codeOrDefault(httpStatus, DefaultServerErrorCode),
		Status:  StatusFail,
		Data:    data,
		Message: message,
	}
}

// StatusCode returns the HTTP status code carried by the envelope.
func (e Envelope) StatusCode() int { return e.Code }

// IsSuccess reports whether the envelope has StatusSuccess.
func (e Envelope) IsSuccess() bool { return e.Status == StatusSuccess }

func (e Envelope) hasMessage() bool {
	return e.Status == StatusError || e.Status == StatusFail
}

func (e Envelope) wire() wireEnvelope {
	w := wireEnvelope{Code: e.Code, Status: e.Status, Data: e.Data}
	if e.hasMessage() {
		msg := e.Message
		w.Message = &msg
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Envelope{Code: w.Code, Status: w.Status, Data: w.Data}
	if w.Message != nil {
		e.Message = *w.Message
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler. The YAML mirrors the JSON form,
// including json tags and json.Marshaler implementations inside Data.
func (e Envelope) MarshalYAML() (any, error) {
	b, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return jsonToYAML(b)
}

// StatusForCode classifies an HTTP status code into an envelope status:
// 5xx is StatusFail, 4xx is StatusError, anything else is StatusSuccess.
func StatusForCode(code int) Status {
	switch {
	case code >= 500:
		return StatusFail
	case code >= 400:
		return StatusError
	default:
		return StatusSuccess
	}
}

// codeOrDefault returns the first code if it is non-zero, else def.
func codeOrDefault(codes []int, def int) int {
	if len(codes) > 0 && codes[0] != 0 {
		return codes[0]
	}
	return def
}
