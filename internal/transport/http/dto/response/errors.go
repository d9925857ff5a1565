package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status: "error",
		Error:  "invalid_request_format",
	}
	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}
	ErrUserAlreadyExists = ErrorResponse{
		Status: "error",
		Error:  "user_already_exists",
	}
	ErrNotFound = ErrorResponse{
		Status: "error",
		Error:  "not_found",
	}
)
