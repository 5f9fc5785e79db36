package auth

// SessionResponseSwagger describes a successful register or login response.
type SessionResponseSwagger struct {
	Success bool    `json:"success"`
	Data    Session `json:"data"`
}

// ErrorDetailsSwagger describes error payload.
type ErrorDetailsSwagger struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponseSwagger describes common error response.
type ErrorResponseSwagger struct {
	Success bool                `json:"success"`
	Error   ErrorDetailsSwagger `json:"error"`
}
