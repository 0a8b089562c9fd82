package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"insyn-search/middleware"
	"insyn-search/models"
	"insyn-search/registry"
	"insyn-search/search"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegistryClient is the part of registry.Client the handlers use.
type RegistryClient interface {
	FetchRecords(ctx context.Context, q models.RecordQuery) ([]models.Record, error)
	Search(ctx context.Context, keyword string) (json.RawMessage, error)
}

type Handler struct {
	Client RegistryClient
	Filter search.RecordFilter
	Logger *zap.Logger
}

func NewHandler(client RegistryClient, filter search.RecordFilter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Client: client, Filter: filter, Logger: logger}
}

// GetRecords serves /getrecords/:company/:startDate/:endDate, applying the
// one date range to both publication and transaction dates.
func (h *Handler) GetRecords(c *fiber.Ctx) error {
	from, err := models.ParseDate(c.Params("startDate"))
	if err != nil {
		return badRequest(c, err)
	}
	to, err := models.ParseDate(c.Params("endDate"))
	if err != nil {
		return badRequest(c, err)
	}

	q := models.NewRecordQuery(c.Params("company"), from, to)
	return h.respondRecords(c, q, "")
}

// Records serves /api/v1/records/:company. from/to set both ranges;
// pubFrom, pubTo, transFrom and transTo override them individually.
// q filters the returned records by free text.
func (h *Handler) Records(c *fiber.Ctx) error {
	q := models.RecordQuery{Company: c.Params("company")}

	dates := []struct {
		param    string
		fallback string
		target   *models.Date
	}{
		{"pubFrom", "from", &q.Publication.From},
		{"pubTo", "to", &q.Publication.To},
		{"transFrom", "from", &q.Transaction.From},
		{"transTo", "to", &q.Transaction.To},
	}
	for _, d := range dates {
		raw := c.Query(d.param, c.Query(d.fallback))
		if raw == "" {
			return badRequest(c, fmt.Errorf("missing %s (or %s) date", d.param, d.fallback))
		}
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return badRequest(c, err)
		}
		*d.target = parsed
	}

	return h.respondRecords(c, q, c.Query("q"))
}

func (h *Handler) respondRecords(c *fiber.Ctx, q models.RecordQuery, filter string) error {
	if err := q.Validate(); err != nil {
		return badRequest(c, err)
	}

	records, err := h.Client.FetchRecords(c.UserContext(), q)
	if err != nil {
		return h.fail(c, err)
	}

	if strings.TrimSpace(filter) != "" && h.Filter != nil {
		records, err = h.Filter.Filter(records, filter)
		if err != nil {
			return h.fail(c, err)
		}
	}

	return c.JSON(records)
}

// SearchKeyword serves /search/:keyword.
func (h *Handler) SearchKeyword(c *fiber.Ctx) error {
	return h.respondSearch(c, c.Params("keyword"))
}

// Search serves /api/v1/search?q=.
func (h *Handler) Search(c *fiber.Ctx) error {
	return h.respondSearch(c, c.Query("q"))
}

func (h *Handler) respondSearch(c *fiber.Ctx, keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return badRequest(c, errors.New("missing search keyword"))
	}

	result, err := h.Client.Search(c.UserContext(), keyword)
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// fail maps registry errors onto gateway statuses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	body := fiber.Map{"error": "internal error"}

	if upstream, ok := registry.AsUpstream(err); ok {
		switch {
		case upstream.IsTimeout():
			status = fiber.StatusGatewayTimeout
			body["error"] = "upstream registry timed out"
		case upstream.StatusCode != 0:
			status = fiber.StatusBadGateway
			body["error"] = "upstream registry returned " + http.StatusText(upstream.StatusCode)
			body["upstream_status"] = upstream.StatusCode
		default:
			status = fiber.StatusBadGateway
			body["error"] = "upstream registry unreachable"
		}
	} else if registry.IsMalformed(err) {
		status = fiber.StatusBadGateway
		body["error"] = "upstream registry sent an unreadable response"
	}

	h.Logger.Error("request failed",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Error(err),
	)
	return c.Status(status).JSON(body)
}
