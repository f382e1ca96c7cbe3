// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package properties

import "github.com/go-viper/mapstructure/v2"

// DecodeConfig decodes a node's opaque config map (as carried by
// graph.NodeDesc.Config, typically sourced from a GraphDescriptionFile)
// into a typed struct, the way a graph.Factory is expected to recover its
// node-type-specific settings. Unknown keys are ignored; type mismatches
// are reported with field paths.
func DecodeConfig(config map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "config",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(config)
}
