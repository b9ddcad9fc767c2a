package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelClosed is returned for calls made on, or interrupted by, a
	// closed connection.
	ErrChannelClosed = errors.New("connection closed")

	// ErrUnknownTool is returned when a call names a tool missing from the
	// catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMalformedCatalog is returned when the server advertises a tool
	// without a name or input schema, or the same name twice.
	ErrMalformedCatalog = errors.New("malformed tool catalog")

	// ErrServerNotFound is returned when a server name cannot be resolved to
	// a launch command.
	ErrServerNotFound = errors.New("tool server not found")
)

// ConnectStage names the step of Connect that failed.
type ConnectStage string

const (
	StageSpawn      ConnectStage = "spawn"
	StageInitialize ConnectStage = "initialize"
	StageListTools  ConnectStage = "list_tools"
	StageCatalog    ConnectStage = "catalog"
)

// ConnectionError reports a failure to establish a session with a tool
// server. It is fatal to the session.
type ConnectionError struct {
	Server string
	Stage  ConnectStage
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to tool server %q failed at %s: %v", e.Server, e.Stage, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ToolInvocationError reports a failed tools/call. Error() is the cause text
// alone so it can be surfaced to the model as is.
type ToolInvocationError struct {
	Tool  string
	Cause error
}

func (e *ToolInvocationError) Error() string {
	if e.Cause == nil {
		return "tool invocation failed"
	}
	return e.Cause.Error()
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Cause
}
