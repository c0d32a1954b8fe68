//go:build tools
// +build tools

// Package tools tracks tool dependencies that are required by the project
// but not directly imported by application code.
//
// Regenerate the API docs with: swag init -g cmd/api/main.go -o docs
package tools

import (
	_ "github.com/swaggo/swag/cmd/swag"
)
