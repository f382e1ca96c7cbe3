// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package types holds the closed sets of enums and bit flags shared between
// the hal and graph packages: payload kinds, pipeline stage/access/usage
// flags, image layouts, descriptor kinds, and the status flags nodes and
// connectors return from their lifecycle callbacks.
//
// Every enum here is a fixed, closed set by design (connector kinds and
// resource payloads are not meant to be extended by embedders, unlike node
// types which are open-ended via the registry).
package types
