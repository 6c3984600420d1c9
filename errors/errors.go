package errors

import "fmt"

var (
	ErrUnauthenticated    = fmt.Errorf("connection not authenticated")
	ErrMalformedEvent     = fmt.Errorf("malformed client event")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
