// Package http exposes the custody read API over REST. It coordinates
// between echo handlers and the application query handlers, wrapping every
// response in a uniform success/error envelope.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	// stepsBatchReader serves filtered, paged step batches.
	stepsBatchReader interface {
		Handle(ctx context.Context, query queries.GetStepsBatchQuery) (queries.GetStepsBatchQueryResponse, error)
	}

	// phaseDurationReader measures the time a step spent between two phases.
	phaseDurationReader interface {
		Handle(
			ctx context.Context,
			query queries.GetStepPhaseDurationQuery,
		) (queries.GetStepPhaseDurationQueryResponse, error)
	}
)

// Server handles the custody REST endpoints.
type Server struct {
	stepsBatchHandler    stepsBatchReader
	phaseDurationHandler phaseDurationReader
	registry             *prometheus.Registry
	openAPIDocument      []byte
}

// NewServer creates an HTTP server over the given query handlers. The
// registry backs the /metrics endpoint.
func NewServer(
	stepsBatchHandler stepsBatchReader,
	phaseDurationHandler phaseDurationReader,
	registry *prometheus.Registry,
) (*Server, error) {
	document, err := OpenAPIDocument()
	if err != nil {
		return nil, err
	}

	return &Server{
		stepsBatchHandler:    stepsBatchHandler,
		phaseDurationHandler: phaseDurationHandler,
		registry:             registry,
		openAPIDocument:      document,
	}, nil
}

// RegisterRoutes binds all endpoints onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/steps/batch-query", s.QueryStepsBatch)
	e.GET("/api/v1/steps/:id/phase-duration", s.GetStepPhaseDuration)
	e.GET("/health", s.Health)
	e.GET("/openapi.json", s.OpenAPI)
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// envelope is the uniform response wrapper of the custody API.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Count     *int64 `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// stepsBatchRequest is the body of POST /api/v1/steps/batch-query.
type stepsBatchRequest struct {
	Filter struct {
		ShipmentID  string `json:"shipmentId"`
		JourneyID   string `json:"journeyId"`
		OperatorID  string `json:"operatorId"`
		AgentID     string `json:"agentId"`
		SenderID    string `json:"senderId"`
		RecipientID string `json:"recipientId"`
		HolderID    string `json:"holderId"`
		State       string `json:"state"`
	} `json:"filter"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type stepResponse struct {
	ID               string    `json:"id"`
	ShipmentID       string    `json:"shipmentId"`
	JourneyID        string    `json:"journeyId"`
	OperatorID       string    `json:"operatorId"`
	AgentID          string    `json:"agentId"`
	Index            int       `json:"index"`
	State            string    `json:"state"`
	Cost             int64     `json:"cost"`
	HolderAddress    string    `json:"holderAddress"`
	RecipientAddress string    `json:"recipientAddress"`
	TxOutRef         string    `json:"txOutRef,omitempty"`
	ETA              time.Time `json:"eta"`
	Version          int       `json:"version"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type phaseDurationResponse struct {
	StepID          string    `json:"stepId"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	FromAt          time.Time `json:"fromAt"`
	ToAt            time.Time `json:"toAt"`
	DurationSeconds float64   `json:"durationSeconds"`
}

// QueryStepsBatch handles POST /api/v1/steps/batch-query.
func (s *Server) QueryStepsBatch(ctx echo.Context) error {
	var request stepsBatchRequest
	if err := ctx.Bind(&request); err != nil {
		return fail(ctx, errs.NewValueIsInvalidErrorWithCause("request body", err))
	}

	filter, err := batchFilterFromRequest(request)
	if err != nil {
		return fail(ctx, err)
	}

	query, err := queries.NewGetStepsBatchQuery(filter, request.Limit, request.Offset)
	if err != nil {
		return fail(ctx, err)
	}

	batch, err := s.stepsBatchHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	items := make([]stepResponse, len(batch.Items))
	for i, item := range batch.Items {
		items[i] = stepResponse{
			ID:               item.ID.String(),
			ShipmentID:       item.ShipmentID.String(),
			JourneyID:        item.JourneyID.String(),
			OperatorID:       item.OperatorID.String(),
			AgentID:          item.AgentID.String(),
			Index:            item.Index,
			State:            item.State.String(),
			Cost:             item.Cost,
			HolderAddress:    item.HolderAddress,
			RecipientAddress: item.RecipientAddress,
			TxOutRef:         item.TxOutRef,
			ETA:              item.ETA,
			Version:          item.Version,
			UpdatedAt:        item.UpdatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Count:   &batch.Total,
	})
}

// GetStepPhaseDuration handles GET /api/v1/steps/:id/phase-duration.
func (s *Server) GetStepPhaseDuration(ctx echo.Context) error {
	stepID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return fail(ctx, errs.NewValueIsInvalidErrorWithCause("id", err))
	}

	from, err := step.StateFromString(ctx.QueryParam("from"))
	if err != nil {
		return fail(ctx, err)
	}
	to, err := step.StateFromString(ctx.QueryParam("to"))
	if err != nil {
		return fail(ctx, err)
	}

	query, err := queries.NewGetStepPhaseDurationQuery(stepID, from, to)
	if err != nil {
		return fail(ctx, err)
	}

	duration, err := s.phaseDurationHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, envelope{
		Success: true,
		Data: phaseDurationResponse{
			StepID:          duration.StepID.String(),
			From:            duration.From.String(),
			To:              duration.To.String(),
			FromAt:          duration.FromAt,
			ToAt:            duration.ToAt,
			DurationSeconds: duration.Duration.Seconds(),
		},
	})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: "healthy"})
}

// OpenAPI handles GET /openapi.json, serving the validated API document.
func (s *Server) OpenAPI(ctx echo.Context) error {
	return ctx.JSONBlob(http.StatusOK, s.openAPIDocument)
}

func batchFilterFromRequest(request stepsBatchRequest) (queries.StepsBatchFilter, error) {
	var filter queries.StepsBatchFilter

	ids := []struct {
		value  string
		name   string
		target **kernel.UUID
	}{
		{request.Filter.ShipmentID, "shipmentId", &filter.ShipmentID},
		{request.Filter.JourneyID, "journeyId", &filter.JourneyID},
		{request.Filter.OperatorID, "operatorId", &filter.OperatorID},
		{request.Filter.AgentID, "agentId", &filter.AgentID},
		{request.Filter.SenderID, "senderId", &filter.SenderID},
		{request.Filter.RecipientID, "recipientId", &filter.RecipientID},
		{request.Filter.HolderID, "holderId", &filter.HolderID},
	}
	for _, id := range ids {
		if id.value == "" {
			continue
		}
		parsed, err := kernel.UUIDFromString(id.value)
		if err != nil {
			return queries.StepsBatchFilter{}, errs.NewValueIsInvalidErrorWithCause(id.name, err)
		}
		*id.target = &parsed
	}

	if request.Filter.State != "" {
		state, err := step.StateFromString(request.Filter.State)
		if err != nil {
			return queries.StepsBatchFilter{}, err
		}
		filter.State = &state
	}

	return filter, nil
}

// fail maps application errors onto HTTP status codes and the error
// envelope.
func fail(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
		code = "VALIDATION_ERROR"
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	}

	return ctx.JSON(status, envelope{
		Success:   false,
		Error:     err.Error(),
		ErrorCode: code,
	})
}
