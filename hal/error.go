// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "errors"

// Common hal errors representing unrecoverable GPU states. Per spec.md §7,
// GPU submission errors (fence timeout, device lost) are fatal — the graph
// runner does not attempt to recover from them, only from the recoverable
// NodeError/ConnectorError kinds defined in the graph package.
var (
	// ErrDeviceOutOfMemory indicates the GPU has exhausted its memory while
	// creating a resource.
	ErrDeviceOutOfMemory = errors.New("hal: device out of memory")

	// ErrDeviceLost indicates the GPU device has been lost (driver crash,
	// reset, or disconnection). The device cannot be recovered.
	ErrDeviceLost = errors.New("hal: device lost")

	// ErrFenceTimeout indicates a Wait call exceeded its deadline.
	ErrFenceTimeout = errors.New("hal: fence wait timeout")

	// ErrResourceNotFound indicates an operation referenced a resource
	// handle the device does not recognize.
	ErrResourceNotFound = errors.New("hal: resource not found")
)
