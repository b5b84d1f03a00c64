package handler

const (
	errInternalServer = "Internal server error"
	errUserExists     = "User already exists"
	errUserNotFound   = "User not found"
	errInvalidCreds   = "Invalid credentials"
	errTokenInvalid   = "Invalid or expired token"
	errEventNotFound  = "Event not found"
)
