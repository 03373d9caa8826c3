package response

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the envelope.
const (
	CodeInvalidInput              = "INVALID_INPUT"
	CodeInvalidAmount             = "INVALID_AMOUNT"
	CodeInvalidOTP                = "INVALID_OTP"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeTokenExpired              = "TOKEN_EXPIRED"
	CodeInvalidToken              = "INVALID_TOKEN"
	CodeAuthError                 = "AUTH_ERROR"
	CodeChargerNotFound           = "CHARGER_NOT_FOUND"
	CodeUserNotFound              = "USER_NOT_FOUND"
	CodeIdentifierInUse           = "IDENTIFIER_IN_USE"
	CodeSessionRejected           = "SESSION_REJECTED"
	CodeSessionNotFound           = "SESSION_NOT_FOUND"
	CodePaymentFailed             = "PAYMENT_FAILED"
	CodeChargerServiceUnavailable = "CHARGER_SERVICE_UNAVAILABLE"
	CodeHistoryServiceUnavailable = "HISTORY_SERVICE_UNAVAILABLE"
	CodeUserServiceUnavailable    = "USER_SERVICE_UNAVAILABLE"
	CodeWalletServiceUnavailable  = "WALLET_SERVICE_UNAVAILABLE"
	CodeSessionServiceUnavailable = "SESSION_SERVICE_UNAVAILABLE"
	CodeOTPServiceUnavailable     = "OTP_SERVICE_UNAVAILABLE"
	CodeRateLimited               = "RATE_LIMITED"
	CodeNotFound                  = "NOT_FOUND"
	CodeMethodNotAllowed          = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge           = "PAYLOAD_TOO_LARGE"
	CodeInternalError             = "INTERNAL_ERROR"
)

// Envelope is the shape of every response body. Success bodies always carry data,
// null included; error bodies carry error and no data.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool       `json:"success"`
	Error   *ErrorBody `json:"error"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// internalErrorBody replaces payloads that cannot be encoded.
var internalErrorBody = []byte(`{"success":false,"error":{"code":"` + CodeInternalError + `","message":"Internal server error"}}` + "\n")

// Success writes data wrapped in a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	write(w, status, successEnvelope{Success: true, Data: data})
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	ErrorWithDetails(w, status, code, message, nil)
}

// ErrorWithDetails writes a failure envelope carrying extra details.
func ErrorWithDetails(w http.ResponseWriter, status int, code, message string, details any) {
	write(w, status, errorEnvelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// write encodes before touching the header so an unencodable body (NaN, channels)
// becomes a 500 instead of a truncated 200.
func write(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = internalErrorBody
	} else {
		payload = append(payload, '\n')
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
