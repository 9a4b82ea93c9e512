// Package protocol defines the contract between the plugin runtime and
// action handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
)

// ActionHandler executes one named action. The config map carries the
// caller-supplied configuration, ectx the orchestration snapshot for this
// step, and logger captures records that are returned to the host in the
// execute response. Return the action output (may be nil) or an error;
// return a *Error to control the error code reported to the host.
type ActionHandler func(
	ctx context.Context,
	config map[string]any,
	ectx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error)
