package models

// ActionDefinition describes a registered action as reported by /info.
// ConfigSchema, when set, is a JSON schema the execute config is
// validated against before the handler runs.
type ActionDefinition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	ConfigSchema map[string]any `json:"-"`
}
