package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// auth errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserDoesNotExist   = errors.New("user does not exist")

	ErrInvalidToken = errors.New("invalid token")

	// reasons attached to ErrInvalidToken
	ErrTokenExpired = errors.New("token expired")
	ErrTokenType    = errors.New("invalid token type")

	// profile errors
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrProfileDoesNotExist  = errors.New("profile does not exist")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmptyUpdate          = errors.New("nothing to update")
	ErrAvatarNotUploaded    = errors.New("avatar is not uploaded")
)
