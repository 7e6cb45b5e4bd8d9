package handler

import (
	"errors"
	"strings"

	"github.com/quillpost/blog/internal/core/domain"
)

// errorResponse is the standard error envelope returned on 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type credentialsRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type postRequest struct {
	Title string `json:"title" form:"title" validate:"required"`
	Body  string `json:"body"  form:"body"`
}

// credentialsForm echoes the submitted username; the password never leaves the server.
type credentialsForm struct {
	Username string `json:"username"`
}

type postForm struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// formErrorResponse lets a client re-render the form with the user's input.
type formErrorResponse struct {
	Error string `json:"error"`
	Form  any    `json:"form"`
}

type postListResponse struct {
	Posts []*domain.Post `json:"posts"`
}

// ValidationMessage strips the sentinel prefix from a wrapped validation error.
func ValidationMessage(err error) string {
	if !errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}
