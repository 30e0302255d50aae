// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.managed-outline/config.toml
//   - YAMLCodec: human-editable YAML document import and export
package file
