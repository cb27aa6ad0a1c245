package models

// Response status values. Clients switch on Status rather than on the HTTP
// code, matching what the booking front-end expects.
const (
	StatusSuccess        = "success"
	StatusInvalidRequest = "invalid_request"
	StatusUnauthorized   = "unauthorized"
	StatusFailed         = "failed"
	StatusConflict       = "conflict"
	StatusNotFound       = "not_found"
	StatusError          = "error"

	StatusValid       = "valid"
	StatusInvalid     = "invalid"
	StatusAlreadyUsed = "already_used"
)

type ApiResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Status:  StatusSuccess,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(status, err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Status:  status,
		Error:   err,
	}
}
