//go:build tools
// +build tools

// Package goatcollab tracks the Go-based tools run through go generate (mockgen)
// as module dependencies.
package goatcollab

import (
	_ "go.uber.org/mock/mockgen"
)
