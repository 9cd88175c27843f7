package responses

// Success wraps every JSON payload under "data".
type Success struct {
	Data any `json:"data"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Failure is the JSON error shape. RequestID echoes the X-Request-Id
// response header so clients can quote it.
type Failure struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}
