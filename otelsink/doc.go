// Package otelsink provides the OpenTelemetry telemetry-context collaborator:
// span creation, attribute setting, span end, and a matching counter-add
// entry point, bound to go.opentelemetry.io/otel when enabled and a no-op
// implementation otherwise.
package otelsink
