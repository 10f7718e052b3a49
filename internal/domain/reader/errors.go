package reader

import "errors"

var (
	ErrReaderNotFound     = errors.New("reader not found")
	ErrTaken              = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
