package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type dataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type pageResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// ErrorResponse is the envelope of every 4xx/5xx response.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Details []domain.FieldIssue `json:"details,omitempty"`
}

func success(c echo.Context, status int, data any) error {
	return c.JSON(status, dataResponse{Success: true, Data: data})
}

func successMessage(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, dataResponse{Success: true, Message: msg, Data: data})
}

func successPage(c echo.Context, status int, data any, req domain.PageRequest, total int64) error {
	return c.JSON(status, pageResponse{Success: true, Data: data, Pagination: domain.NewPagination(req, total)})
}
