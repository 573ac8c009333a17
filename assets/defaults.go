package assets

import (
	_ "embed"
)

// EnvTemplate is written by `termhelper config init`.
//
//go:embed defaults/env.example
var EnvTemplate []byte

// DefaultGuardrailYAML contains the embedded default guardrail rules.
//
//go:embed defaults/guardrail.yaml
var DefaultGuardrailYAML []byte
