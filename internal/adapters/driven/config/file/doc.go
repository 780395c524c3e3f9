// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML settings in <config dir>/config.toml
//   - PromptStore: editable prompt templates in <config dir>/prompts/
package file
