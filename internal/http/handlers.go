package http

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/service"
)

// NewApp builds the fiber application with every route registered.
func NewApp(svcs *service.Services) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New(), requestid.New())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	Register(app, svcs)
	return app
}

func Register(app *fiber.App, svcs *service.Services) {
	h := &handlers{svcs: svcs}

	tanks := app.Group("/tanks")
	tanks.Get("/", h.listTanks)
	tanks.Post("/", h.createTank)
	tanks.Get("/:id", h.getTank)
	tanks.Put("/:id", h.updateTank)
	tanks.Patch("/:id", h.updateTank)
	tanks.Delete("/:id", h.deleteTank)
	tanks.Put("/:id/level", h.updateLevel)
	tanks.Get("/:id/readings", h.listReadings)
	tanks.Delete("/:id/readings", h.pruneReadings)
	tanks.Get("/:id/readings/latest", h.latestReading)
	tanks.Get("/:id/readings/date-range", h.readingsInRange)
	tanks.Get("/:id/readings/stats", h.readingStats)

	readings := app.Group("/tank-readings")
	readings.Post("/", h.storeReading)
	readings.Post("/batch", h.storeBatch)
}

type handlers struct {
	svcs *service.Services
}

func (h *handlers) listTanks(c *fiber.Ctx) error {
	items, err := h.svcs.Tanks.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *handlers) createTank(c *fiber.Ctx) error {
	var req createTankRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	tank, err := h.svcs.Tanks.Create(c.UserContext(), service.CreateTankInput{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Capacity:     *req.Capacity,
		Height:       *req.Height,
		Diameter:     req.Diameter,
		Location:     req.Location,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "tank created", "data": tank})
}

func (h *handlers) getTank(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	tank, err := h.svcs.Tanks.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": tank})
}

func (h *handlers) updateTank(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateTankRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	// explicit nulls clear optional attributes
	var present map[string]json.RawMessage
	_ = json.Unmarshal(c.Body(), &present)

	tank, err := h.svcs.Tanks.Update(c.UserContext(), id, service.UpdateTankInput{
		Name:          req.Name,
		SerialNumber:  req.SerialNumber,
		Capacity:      req.Capacity,
		Height:        req.Height,
		Diameter:      req.Diameter,
		ClearDiameter: isNull(present, "diameter"),
		Location:      req.Location,
		ClearLocation: isNull(present, "location"),
		Active:        req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "tank updated", "data": tank})
}

func (h *handlers) updateLevel(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateLevelRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	tank, err := h.svcs.Tanks.UpdateLevel(c.UserContext(), id, *req.Level)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "tank level updated", "data": tank})
}

func (h *handlers) deleteTank(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svcs.Tanks.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "tank deleted"})
}

func (h *handlers) listReadings(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.svcs.Readings.List(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *handlers) latestReading(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	reading, err := h.svcs.Readings.Latest(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if reading == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no readings available for this tank"})
	}
	return c.JSON(fiber.Map{"data": reading})
}

func (h *handlers) readingsInRange(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.svcs.Readings.ListInRange(c.UserContext(), id, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *handlers) readingStats(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	start, end, err := dateRange(c)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := h.svcs.Readings.Stats(c.UserContext(), id, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

func (h *handlers) pruneReadings(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	cutoff, err := parseTime(c.Query("older_than"), false)
	if err != nil {
		return respondError(c, &validationError{Fields: map[string]string{"older_than": err.Error()}})
	}
	n, err := h.svcs.Readings.Prune(c.UserContext(), id, cutoff)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "readings pruned", "deleted": n})
}

func (h *handlers) storeReading(c *fiber.Ctx) error {
	var req storeReadingRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	reading, err := h.svcs.Ingest.Register(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "reading registered", "data": reading})
}

func (h *handlers) storeBatch(c *fiber.Ctx) error {
	var req storeBatchRequest
	if err := decode(c, &req); err != nil {
		return respondError(c, err)
	}
	items := make([]service.RegisterReadingInput, len(req.Readings))
	for i, r := range req.Readings {
		items[i] = r.input()
	}

	res := h.svcs.Ingest.RegisterBatch(c.UserContext(), items)
	failures := make([]fiber.Map, len(res.Failures))
	for i, f := range res.Failures {
		failures[i] = fiber.Map{"index": f.Index, "error": f.Err.Error()}
	}

	status := fiber.StatusCreated
	if len(res.Registered) == 0 {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"message": strconv.Itoa(len(res.Registered)) + " readings registered",
		"data":    res.Registered,
		"errors":  failures,
	})
}

func (r storeReadingRequest) input() service.RegisterReadingInput {
	raw := r.RawData
	if string(raw) == "null" {
		raw = nil
	}
	return service.RegisterReadingInput{
		TankID:      *r.TankID,
		LiquidLevel: *r.LiquidLevel,
		Timestamp:   r.ReadingTimestamp,
		Temperature: r.Temperature,
		RawData:     raw,
	}
}

var errMalformedBody = errors.New("malformed request body")

func decode(c *fiber.Ctx, dst any) error {
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errMalformedBody
	}
	return validateRequest(dst)
}

var errBadID = errors.New("tank id must be a positive integer")

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func isNull(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return ok && strings.TrimSpace(string(raw)) == "null"
}

// dateRange reads start_date and end_date. A date-only end_date covers that whole day.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	fields := map[string]string{}
	start, err := parseTime(c.Query("start_date"), false)
	if err != nil {
		fields["start_date"] = err.Error()
	}
	end, err := parseTime(c.Query("end_date"), true)
	if err != nil {
		fields["end_date"] = err.Error()
	}
	if len(fields) == 0 && end.Before(start) {
		fields["end_date"] = "must not be before start_date"
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &validationError{Fields: fields}
	}
	return start, end, nil
}

const dateOnly = "2006-01-02"

func parseTime(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func respondError(c *fiber.Ctx, err error) error {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, errMalformedBody), errors.Is(err, errBadID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
