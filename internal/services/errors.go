package services

import "errors"

// Expected business outcomes. Handlers branch on these with errors.Is;
// anything else coming out of a service is a storage failure and the
// surrounding transaction rolls back.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrArticleNotFound    = errors.New("article not found")
	ErrParentNotFound     = errors.New("parent comment not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmptyContent       = errors.New("content must not be empty")
	ErrInvalidRole        = errors.New("invalid role")
)
