package config

import "solar_analyzer/internal/model"

// ErrInvalid matches any configuration validation failure.
var ErrInvalid = model.ErrInvalidConfig

type (
	ValidationError  = model.ValidationError
	ValidationErrors = model.ValidationErrors
)
