package models

// Manifest is the static identity metadata of a plugin, fixed for the
// lifetime of the process.
type Manifest struct {
	ID          string `json:"id"          validate:"required"`
	Name        string `json:"name"        validate:"required"`
	Version     string `json:"version"`
	Description string `json:"description"`
}
