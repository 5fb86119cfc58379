package observability

import "errors"

// Observability errors.
var (
	// ErrUnknownExporter indicates an unsupported trace exporter name.
	ErrUnknownExporter = errors.New("unknown trace exporter type")

	// ErrMetricsDisabled indicates metrics were read from a provider without them.
	ErrMetricsDisabled = errors.New("metrics not enabled")
)
