package services

import "errors"

// Error kinds returned by the service layer. Services wrap these with
// fmt.Errorf("%w: ...") and handlers map them to HTTP statuses with
// errors.Is; anything that matches none of them is an internal error.
var (
	ErrValidation     = errors.New("invalid input")
	ErrAuthentication = errors.New("invalid credentials")
	ErrAuthorization  = errors.New("not allowed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrUpload         = errors.New("upload failed")
)
