package core

import "errors"

// Errors returned by NewApp when a required collaborator is missing.
var (
	ErrMissingDb             = errors.New("database is required (use WithDbApp)")
	ErrMissingConfigProvider = errors.New("config provider is required (use WithConfigProvider)")
	ErrMissingLogger         = errors.New("logger is required (use WithLogger)")
)
