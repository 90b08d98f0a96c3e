package calculator

import (
	"encoding/json"
	"net/http"
	"time"

	"educalc/internal/handlers"
	"educalc/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculation domain's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const (
	errLabelCalculation = "Error in the expression or calculation"
	errLabelInternal    = "Internal server error"
)

var engine = NewEngine()

// Calculate handles POST /calculate: sanitize, route to the mode solver,
// and return the result with its teaching steps.
func Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, req.Mode, errLabelCalculation, err, http.StatusBadRequest, req.Expression, w)
		return
	}

	span.SetAttributes(
		attribute.String("calc.expression", req.Expression),
		attribute.String("calc.requested_mode", req.Mode),
	)

	expression, err := SanitizeExpression(req.Expression)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, req.Mode, errLabelCalculation, err, http.StatusBadRequest, req.Expression, w)
		return
	}

	start := time.Now()
	result, err := engine.Calculate(expression, req.Mode, req.Variables)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		label, status := errLabelInternal, http.StatusInternalServerError
		if IsCalcError(err) {
			label, status = errLabelCalculation, http.StatusBadRequest
		}
		observability.RecordError(ctx, span, logger, errorCounter, req.Mode, label, err, status, req.Expression, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("mode", result.Mode))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	stepsHistogram.Record(ctx, int64(len(result.Steps)), attrs)

	span.AddEvent("calculation.complete", trace.WithAttributes(
		attribute.String("result", result.Result),
		attribute.Int("steps", len(result.Steps)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calc.mode", result.Mode))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculation completed",
		zap.String("expression", expression),
		zap.String("mode", result.Mode),
		zap.String("result", result.Result),
		zap.Int("steps", len(result.Steps)),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalculationResponse{
		Original: req.Expression,
		Result:   result.Result,
		Steps:    result.Steps,
		Mode:     result.Mode,
	})
}

// Validate handles POST /validate: checks that an expression is parseable
// and safe without computing it. A rejected expression is a normal outcome,
// not an error: the response is 200 with valid=false.
func Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.validate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, req.Mode, errLabelCalculation, err, http.StatusBadRequest, req.Expression, w)
		return
	}

	span.SetAttributes(attribute.String("calc.expression", req.Expression))

	resp := ValidationResponse{Expression: req.Expression, Mode: req.Mode}
	if resp.Mode == "" {
		resp.Mode = ModeAuto
	}

	expression, err := SanitizeExpression(req.Expression)
	if err == nil {
		if resp.Mode == ModeAuto {
			resp.Mode = engine.DetectMode(expression)
		}
		resp.Expression = expression
		err = engine.Validate(expression, resp.Mode)
	}

	if err != nil {
		resp.Valid = false
		resp.Error = err.Error()
		span.AddEvent("validation.rejected", trace.WithAttributes(
			attribute.String("reason", err.Error()),
		))
		logger.Warn("expression rejected",
			zap.String("expression", req.Expression),
			zap.String("reason", err.Error()),
			zap.String("request_id", requestID),
		)
	} else {
		resp.Valid = true
		logger.Info("expression validated",
			zap.String("expression", expression),
			zap.String("mode", resp.Mode),
			zap.String("request_id", requestID),
		)
	}

	span.SetAttributes(attribute.Bool("calc.valid", resp.Valid))
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, resp)
}
