package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"PriceSim/internal/domain/models"
	domrepo "PriceSim/internal/domain/repository"
	"PriceSim/internal/services/pricing"
	"PriceSim/internal/services/tabular"
	"PriceSim/internal/usecase"
	"PriceSim/pkg/config"
	xhttp "PriceSim/pkg/http"
	xlogger "PriceSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PricingOptions carries the request limits and form defaults of the API.
type PricingOptions struct {
	Defaults       config.Preset
	MaxHorizon     int
	MaxUploadBytes int64
}

// PricingEchoHandler serves the simulation, projection and recomputation endpoints.
type PricingEchoHandler struct {
	logger *xlogger.Logger
	sim    *usecase.Simulator
	rc     *usecase.Recomputer
	opts   PricingOptions
	now    func() time.Time
}

func NewPricingEchoHandler(logger *xlogger.Logger, sim *usecase.Simulator, rc *usecase.Recomputer, opts PricingOptions) *PricingEchoHandler {
	if opts.MaxHorizon <= 0 {
		opts.MaxHorizon = 520
	}
	return &PricingEchoHandler{logger: logger, sim: sim, rc: rc, opts: opts, now: time.Now}
}

func (h *PricingEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/defaults", h.Defaults)
	g.POST("/simulate", h.Simulate)
	g.POST("/project", h.Project)
	g.POST("/recompute", h.Recompute)
	g.GET("/sessions/:id/settings", h.Settings)
	g.POST("/sessions/:id/recompute", h.RecomputeUpload)
}

// defaultsResponse is the initial state of the simulation form.
type defaultsResponse struct {
	config.Preset
	Weeks   int                  `json:"weeks"`
	Summary []models.SummaryItem `json:"summary"`
}

func (h *PricingEchoHandler) Defaults(c echo.Context) error {
	return xhttp.SuccessResponse(c, defaultsResponse{
		Preset:  h.opts.Defaults,
		Weeks:   h.sim.Weeks(),
		Summary: usecase.BuildSummary(h.opts.Defaults.Template),
	})
}

func (h *PricingEchoHandler) Simulate(c echo.Context) error {
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.sim.Simulate(c.Request().Context(), req.SessionID, *req.CurrentPrice, req.Signals.Model(), req.Template.Model())
	if err != nil {
		return h.fail(c, "simulate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// projectResponse is a raw projection with its week table.
type projectResponse struct {
	Series models.PriceSeries     `json:"series"`
	Table  []models.SimulationRow `json:"table"`
	Final  float64                `json:"final"`
}

func (h *PricingEchoHandler) Project(c echo.Context) error {
	req := &models.ProjectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if *req.HorizonWeeks > h.opts.MaxHorizon {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_LTE", "horizon_weeks",
			"horizon_weeks must be less than or equal to the configured maximum", http.StatusBadRequest).
			WithParam("max", h.opts.MaxHorizon))
	}

	tpl := req.Template.Model()
	series, err := h.sim.Project(tpl.Params(*req.StartingPrice, *req.HorizonWeeks, req.Signals.Model()))
	if err != nil {
		return h.fail(c, "project", err)
	}
	return xhttp.SuccessResponse(c, projectResponse{Series: series, Table: usecase.BuildTable(series), Final: series.Final()})
}

func (h *PricingEchoHandler) Settings(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sess, err := h.sim.Settings(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "settings", err)
	}
	return xhttp.SuccessResponse(c, models.SessionSettings{Session: sess, Summary: usecase.BuildSummary(sess.Template)})
}

func (h *PricingEchoHandler) Recompute(c echo.Context) error {
	if h.overLimit(c) {
		return xhttp.AppErrorResponse(c, xhttp.PayloadTooLargeError("request body exceeds the upload limit"))
	}
	req := &models.RecomputeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.rc.Recompute(c.Request().Context(), req.Template.Model(), req.Rows)
	if err != nil {
		return h.fail(c, "recompute", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// RecomputeUpload recomputes an uploaded CSV table with the template stored
// for the session and returns the augmented table as a download.
func (h *PricingEchoHandler) RecomputeUpload(c echo.Context) error {
	req := &models.SessionRequest{ID: c.Param("id")}
	if verr := xhttp.ValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.overLimit(c) {
		return xhttp.AppErrorResponse(c, xhttp.PayloadTooLargeError("upload exceeds the size limit"))
	}
	ctx := c.Request().Context()

	sess, err := h.sim.Settings(ctx, req.ID)
	if err != nil {
		return h.fail(c, "recompute_upload", err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return xhttp.AppErrorResponse(c, xhttp.PayloadTooLargeError("upload exceeds the size limit"))
		}
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(xhttp.CodeRequired, "file", "file is required", http.StatusBadRequest))
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, "recompute_upload", err)
	}
	defer f.Close()

	tbl, err := tabular.Read(f)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(xhttp.CodeInvalidTable, "file", err.Error(), http.StatusBadRequest))
	}

	res, err := h.rc.Recompute(ctx, sess.Template, tbl.Rows)
	if err != nil {
		return h.fail(c, "recompute_upload", err)
	}

	var buf bytes.Buffer
	if err := tabular.Write(&buf, tbl, res); err != nil {
		return h.fail(c, "recompute_upload", err)
	}
	h.logger.Info("recomputed upload",
		xlogger.String("session_id", req.ID),
		xlogger.Int("rows", len(tbl.Rows)),
		xlogger.Int("failed", res.Failed),
	)
	return xhttp.AttachmentResponse(c, tabular.FileName(h.now()), "text/csv; charset=utf-8", buf.Bytes())
}

// overLimit rejects bodies that declare a size above the upload limit and
// caps the rest.
func (h *PricingEchoHandler) overLimit(c echo.Context) bool {
	if h.opts.MaxUploadBytes <= 0 {
		return false
	}
	r := c.Request()
	if r.ContentLength > h.opts.MaxUploadBytes {
		return true
	}
	r.Body = http.MaxBytesReader(c.Response(), r.Body, h.opts.MaxUploadBytes)
	return false
}

// fail maps usecase and core errors to API errors.
func (h *PricingEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var ipe *pricing.InvalidParameterError
	var dav *pricing.DomainAssumptionViolation
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ipe):
		return xhttp.NewAppError(xhttp.CodeInvalidParameter, ipe.Field, ipe.Error(), http.StatusBadRequest).WithError(err)
	case errors.As(err, &dav):
		return xhttp.NewAppError(xhttp.CodeDomainAssumption, "signals", dav.Error(), http.StatusBadRequest).
			WithParam("violations", dav.Violations).WithError(err)
	case errors.Is(err, domrepo.ErrSessionNotFound):
		return xhttp.NotFoundError("session not found or expired").WithError(err)
	case errors.Is(err, usecase.ErrEmptyBatch):
		return xhttp.NewAppError(xhttp.CodeEmptyBatch, "rows", "no rows to recompute", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrBatchTooLarge):
		return xhttp.PayloadTooLargeError(err.Error())
	case errors.As(err, &mbe):
		return xhttp.PayloadTooLargeError("request body exceeds the upload limit")
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
