package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/kbtwatch/tracker/app/dto"
	businessflow "github.com/kbtwatch/tracker/business_flow"
	"github.com/kbtwatch/tracker/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type ResultsHandlerInterface interface {
	Index(c fiber.Ctx) error
	ListResults(c fiber.Ctx) error
	ExportResults(c fiber.Ctx) error
}

type ResultsHandler struct {
	flow      businessflow.ResultsFlow
	validator *validator.Validate
}

func NewResultsHandler(flow businessflow.ResultsFlow) ResultsHandlerInterface {
	return &ResultsHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ResultsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *ResultsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Index renders the results page. The flow degrades store failures into page
// data with an error string, so this handler always returns a 200 page.
func (h *ResultsHandler) Index(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/")
	page := h.flow.ResultsPage(ctx)

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		log.Println("Render results page failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render results page", "RENDER_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// ListResults returns the latest results as JSON, newest period first
func (h *ResultsHandler) ListResults(c fiber.Ctx) error {
	var query dto.ListResultsQuery
	if err := c.Bind().Query(&query); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "VALIDATION_ERROR", nil)
	}
	if query.Limit == 0 {
		query.Limit = utils.DefaultLatestLimit
	}

	if err := h.validator.Struct(&query); err != nil {
		details := make([]string, 0)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				details = append(details, getValidationErrorMessage(verr))
			}
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "VALIDATION_ERROR", details)
	}

	ctx := h.createRequestContext(c, "/api/v1/results")
	res, err := h.flow.LatestResults(ctx, query.Limit)
	if err != nil {
		log.Println("List results failed", err)
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Result store is unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list results", "LIST_RESULTS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Latest results retrieved", res)
}

// ExportResults streams the latest results as an Excel workbook
func (h *ResultsHandler) ExportResults(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/results/export")
	filename, content, err := h.flow.ExportResultsExcel(ctx)
	if err != nil {
		log.Println("Export results failed", err)
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Result store is unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export results", "EXPORT_RESULTS_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(content)
}

func (h *ResultsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
