package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the envelope with the given status; the envelope
// status always equals the HTTP status.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// BadRequestResponse answers 400, typically with validation errors.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse answers err with its own status when it is an *AppError
// and with a generic 500 otherwise.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return InternalServerErrorResponse(c)
	}
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return DataResponse(c, status, []*AppError{appErr})
}

// AttachmentResponse sends body as a download named name.
func AttachmentResponse(c echo.Context, name, contentType string, body []byte) error {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Blob(http.StatusOK, contentType, body)
}
