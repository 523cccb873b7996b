// FILE: internal/pkg/serverutils/response.go
package serverutils

// Response is the envelope of every JSON reply.
type Response[T any] struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Data    T                 `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *Response[any] {
	return &Response[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// WithReason attaches a machine readable reason code (e.g. STORE_UNAVAILABLE).
func (r *Response[T]) WithReason(reason string) *Response[T] {
	r.Reason = reason
	return r
}

func (r *Response[T]) WithErrors(errs map[string]string) *Response[T] {
	r.Errors = errs
	return r
}
