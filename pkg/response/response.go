package response

import "governance/pkg/apperror"

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`      // "success" or "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`   // apperror code
	Fields     map[string]string `json:"fields,omitempty"` // per-field validation messages
}

// Paged is the data payload of list endpoints
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromAppError renders a classified error with its code and field messages
func FromAppError(appErr *apperror.Error) Response {
	r := Error(appErr.HTTPStatus(), appErr.Error())
	r.Code = string(appErr.Code)
	r.Fields = appErr.Fields
	if appErr.Code == apperror.CodeStorage {
		r.Error = appErr.Message
	}
	return r
}
