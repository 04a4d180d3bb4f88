package shortcode

import "time"

// Metrics records render telemetry for expanded shortcodes.
type Metrics interface {
	ObserveRenderDuration(shortcode string, duration time.Duration)
	IncrementRenderError(shortcode string)
}

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRenderDuration(string, time.Duration) {}

func (noopMetrics) IncrementRenderError(string) {}
