package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog/internal/api/metrics"
	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/ports"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Index lists every post, newest first.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Success      200  {object}  postListResponse
// @Failure      500  {object}  errorResponse
// @Router       / [get]
func (h *PostHandler) Index(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return c.JSON(http.StatusOK, postListResponse{Posts: posts})
}

// Show returns a single post.
//
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post id"
// @Success      200  {object}  domain.Post
// @Failure      404  {object}  errorResponse
// @Router       /{id} [get]
func (h *PostHandler) Show(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Edit returns the post to prefill an edit form. Only the author may load it.
//
// @Summary      Load a post for editing
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post id"
// @Success      200  {object}  domain.Post
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /{id}/update [get]
func (h *PostHandler) Edit(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.service.FetchForEdit(c.Request().Context(), id, currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Create publishes a new post authored by the current user.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      postRequest  true  "Title and body"
// @Success      303   "Redirect to the index"
// @Failure      400   {object}  formErrorResponse
// @Failure      401   {object}  errorResponse
// @Router       /create [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	form := postForm{Title: req.Title, Body: req.Body}
	if err := c.Validate(&req); err != nil {
		return formError(c, "create", err.Error(), form)
	}

	if _, err := h.service.Create(c.Request().Context(), currentUser(c), req.Title, req.Body); err != nil {
		return mutationFailed(c, "create", err, form)
	}

	metrics.PostMutationsTotal.WithLabelValues("create", "ok").Inc()
	return c.Redirect(http.StatusSeeOther, IndexPath)
}

// Update edits a post. Only the author may change it.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      int          true  "Post id"
// @Param        body  body      postRequest  true  "Title and body"
// @Success      303   "Redirect to the index"
// @Failure      400   {object}  formErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /{id}/update [post]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	form := postForm{Title: req.Title, Body: req.Body}

	// The service checks auth and ownership before validating the fields.
	if err := h.service.Update(c.Request().Context(), currentUser(c), id, req.Title, req.Body); err != nil {
		return mutationFailed(c, "update", err, form)
	}

	metrics.PostMutationsTotal.WithLabelValues("update", "ok").Inc()
	return c.Redirect(http.StatusSeeOther, IndexPath)
}

// Delete removes a post. Only the author may delete it.
//
// @Summary      Delete a post
// @Tags         posts
// @Param        id   path      int  true  "Post id"
// @Success      303  "Redirect to the index"
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /{id}/delete [post]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), currentUser(c), id); err != nil {
		return mutationFailed(c, "delete", err, nil)
	}

	metrics.PostMutationsTotal.WithLabelValues("delete", "ok").Inc()
	return c.Redirect(http.StatusSeeOther, IndexPath)
}

func formError(c echo.Context, action, msg string, form any) error {
	metrics.PostMutationsTotal.WithLabelValues(action, "invalid").Inc()
	return c.JSON(http.StatusBadRequest, formErrorResponse{Error: msg, Form: form})
}

// mutationFailed answers validation failures with the submitted form and
// leaves every other error to the central error handler.
func mutationFailed(c echo.Context, action string, err error, form any) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return formError(c, action, ValidationMessage(err), form)
	case errors.Is(err, domain.ErrForbidden):
		metrics.PostMutationsTotal.WithLabelValues(action, "forbidden").Inc()
	case errors.Is(err, domain.ErrPostNotFound):
		metrics.PostMutationsTotal.WithLabelValues(action, "not_found").Inc()
	default:
		metrics.PostMutationsTotal.WithLabelValues(action, "error").Inc()
	}
	return err
}
