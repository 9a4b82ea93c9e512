package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/log"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/otelhelper"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/protocol"
)

type executeRequest struct {
	Action  string                  `json:"action"  validate:"required"`
	Config  map[string]any          `json:"config"`
	Context models.ExecutionContext `json:"context"`
}

// handleExecute dispatches one action invocation. Action-level failures
// (unknown action, invalid config, handler errors) are reported inside a
// 200 response; only malformed requests get a non-200 status.
func (p *Plugin) handleExecute(c fiber.Ctx) error {
	var req executeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "malformed request body: "+err.Error())
	}

	if err := p.validate.Struct(&req); err != nil {
		return badRequest(c, "action is required")
	}

	ectx := req.Context.Normalized()

	config := req.Config
	if config == nil {
		config = map[string]any{}
	}

	entry, ok := p.registry.Lookup(req.Action)
	if !ok {
		return c.JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    protocol.CodeUnknownAction,
				"message": "Unknown action: " + req.Action,
			},
		})
	}

	if err := validateConfig(entry.Definition, config); err != nil {
		return c.JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    protocol.CodeInvalidConfig,
				"message": err.Error(),
			},
		})
	}

	ctx := c.Context()

	var span trace.Span
	if p.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, p.tracer, "plugin.execute",
			attribute.String(otelhelper.PluginIDKey, p.manifest.ID),
			attribute.String(otelhelper.PluginVersionKey, p.manifest.Version),
			attribute.String(otelhelper.PluginInstanceKey, p.instanceID),
			attribute.String(otelhelper.ActionIDKey, req.Action),
			attribute.String(otelhelper.ExecutionIDKey, ectx.ExecutionID),
			attribute.String(otelhelper.FlowIDKey, ectx.FlowID),
			attribute.String(otelhelper.StepIDKey, ectx.StepID),
		)
		defer span.End()
	}

	collector := log.NewCollector()
	start := time.Now()

	output, err := invoke(ctx, entry.Handler, config, ectx, collector.Logger())

	durationMS := time.Since(start).Milliseconds()
	logs := collector.Entries()
	metrics := fiber.Map{"duration_ms": durationMS}

	if err != nil {
		if span != nil {
			otelhelper.SetError(span, err,
				attribute.String(otelhelper.ErrorCodeKey, protocol.ErrorCode(err)))
		}

		p.logger.Warn("Action failed",
			"action_id", req.Action,
			"execution_id", ectx.ExecutionID,
			"error", err,
			"duration_ms", durationMS)

		// Logs gathered before the failure still reach the host.
		return c.JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    protocol.ErrorCode(err),
				"message": err.Error(),
			},
			"logs":    logs,
			"metrics": metrics,
		})
	}

	if output == nil {
		output = map[string]any{}
	}

	p.logger.Debug("Action succeeded",
		"action_id", req.Action,
		"execution_id", ectx.ExecutionID,
		"duration_ms", durationMS)

	return c.JSON(fiber.Map{
		"success": true,
		"output":  output,
		"logs":    logs,
		"metrics": metrics,
	})
}

// invoke runs the handler, converting a panic into a structured failure
// so a broken action cannot take down the plugin process.
func invoke(
	ctx context.Context,
	handler protocol.ActionHandler,
	config map[string]any,
	ectx models.ExecutionContext,
	logger *slog.Logger,
) (output map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = protocol.Errorf(protocol.CodeExecutionError, "action panicked: %v", r)
		}
	}()

	return handler(ctx, config, ectx, logger)
}

func validateConfig(def models.ActionDefinition, config map[string]any) error {
	if len(def.ConfigSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(def.ConfigSchema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
	}

	return nil
}
