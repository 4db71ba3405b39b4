package api

import "net/http"

// Fault codes tell the caller who is to blame.
const (
	FaultClient = "Client"
	FaultServer = "Server"
)

// FaultBody is the inner error document.
type FaultBody struct {
	FaultCode   string `json:"faultcode"`
	FaultString string `json:"faultstring"`
	Code        int    `json:"code"`
}

// Fault is the body of every non-2xx response.
type Fault struct {
	ErrorMessage FaultBody `json:"error_message"`
}

// NewFault builds a fault for status code. 5xx codes are server faults.
func NewFault(code int, msg string) Fault {
	fc := FaultClient
	if code >= http.StatusInternalServerError {
		fc = FaultServer
	}
	return Fault{ErrorMessage: FaultBody{FaultCode: fc, FaultString: msg, Code: code}}
}
