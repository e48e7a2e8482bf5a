// Package response defines the JSON envelope returned by every endpoint.
package response

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the uniform reply envelope. StatusCode repeats the HTTP code in
// the body; exactly one of Data and Error is populated.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success builds a success envelope around a payload.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     statusSuccess,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error builds an error envelope around a human-readable message.
func Error(statusCode int, message string) Response {
	return Response{
		Status:     statusError,
		StatusCode: statusCode,
		Error:      message,
	}
}
