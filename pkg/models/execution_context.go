package models

// ExecutionContext is the orchestration state snapshot passed to an
// action handler: flow identifiers, variable bindings and the outputs of
// previously executed steps. It is built once per execute request and
// never shared across invocations.
type ExecutionContext struct {
	ExecutionID string                    `json:"execution_id"`
	FlowID      string                    `json:"flow_id"`
	StepID      string                    `json:"step_id"`
	Variables   map[string]string         `json:"variables"`
	StepOutputs map[string]map[string]any `json:"step_outputs"`
}

// Normalized returns a copy with nil maps replaced by empty ones, so
// handlers can index them without guarding.
func (c ExecutionContext) Normalized() ExecutionContext {
	if c.Variables == nil {
		c.Variables = map[string]string{}
	}

	if c.StepOutputs == nil {
		c.StepOutputs = map[string]map[string]any{}
	}

	return c
}
