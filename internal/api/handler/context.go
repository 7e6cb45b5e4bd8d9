package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog/internal/api/middleware"
	"github.com/quillpost/blog/internal/core/domain"
)

// currentUser returns the user loaded by middleware.LoadUser, nil when anonymous.
func currentUser(c echo.Context) *domain.User {
	return middleware.CurrentUser(c)
}

// postID parses the :id path parameter. Anything that is not a positive
// integer cannot name a post, so it is reported as not found.
func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return id, nil
}
