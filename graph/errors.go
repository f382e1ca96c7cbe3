// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
)

// ErrDanglingOutput indicates a compiled schedule's input edge references an
// output resource the resource table no longer has an entry for; it should
// never occur outside a Builder bug.
var ErrDanglingOutput = errors.New("graph: dangling output reference")

// InvalidArgumentError reports a malformed call into the graph API itself
// (bad node type tag, duplicate identifier, unknown connector name) rather
// than a problem with the graph's structure or a node's runtime behavior.
type InvalidArgumentError struct {
	Argument string
	Reason   string
	Err      error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph: invalid argument %q: %s: %v", e.Argument, e.Reason, e.Err)
	}
	return fmt.Sprintf("graph: invalid argument %q: %s", e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// Cause returns the wrapped error, if any.
func (e *InvalidArgumentError) Cause() error { return e.Err }

// ConnectionMissingError reports a required input connector left
// unconnected after build.
type ConnectionMissingError struct {
	NodeID    string
	InputName string
}

func (e *ConnectionMissingError) Error() string {
	return fmt.Sprintf("graph: node %q input %q has no connection", e.NodeID, e.InputName)
}

// Cause always returns nil: a missing connection has no underlying error.
func (e *ConnectionMissingError) Cause() error { return nil }

// InvalidConnectionError reports a connection whose source output and
// destination input are incompatible (payload kind mismatch, delay on a
// connector that does not support it, array size contract violation).
type InvalidConnectionError struct {
	SrcNodeID, SrcOutput string
	DstNodeID, DstInput  string
	Reason               string
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("graph: invalid connection %s.%s -> %s.%s: %s",
		e.SrcNodeID, e.SrcOutput, e.DstNodeID, e.DstInput, e.Reason)
}

// Cause always returns nil: an invalid connection has no underlying error.
func (e *InvalidConnectionError) Cause() error { return nil }

// BuildError wraps a failure during the connect algorithm that isn't
// attributable to one specific node or connector (cyclic delay-0 subgraph,
// ring-size infeasibility, descriptor set construction failure).
type BuildError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph: build failed at %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("graph: build failed at %s: %s", e.Stage, e.Reason)
}

func (e *BuildError) Unwrap() error { return e.Err }
func (e *BuildError) Cause() error  { return e.Err }

// NodeError wraps an error a node's lifecycle callback returned.
type NodeError struct {
	NodeID string
	Phase  string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("graph: node %q failed during %s: %v", e.NodeID, e.Phase, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
func (e *NodeError) Cause() error  { return e.Err }

// ConnectorError wraps an error a connector's lifecycle callback returned.
type ConnectorError struct {
	NodeID        string
	ConnectorName string
	Err           error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("graph: connector %q on node %q failed: %v", e.ConnectorName, e.NodeID, e.Err)
}

func (e *ConnectorError) Unwrap() error { return e.Err }
func (e *ConnectorError) Cause() error  { return e.Err }

// ResourceError wraps a failure allocating, aliasing, or destroying a
// backing hal resource.
type ResourceError struct {
	ResourceName string
	Err          error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("graph: resource %q failed: %v", e.ResourceName, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
func (e *ResourceError) Cause() error  { return e.Err }
