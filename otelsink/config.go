package otelsink

import (
	"github.com/go-playground/validator/v10"

	"github.com/sjanel/aeronet-go/aeroerr"
)

// Config mirrors the OTLP exporter knobs an embedder supplies to enable
// tracing on a listener: endpoint, optional per-request headers, the
// service name attached to every span, and a sampling ratio.
type Config struct {
	Enabled     bool              `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Endpoint    string            `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint" toml:"endpoint" validate:"required_if=Enabled true"`
	Headers     map[string]string `mapstructure:"headers" json:"headers" yaml:"headers" toml:"headers"`
	ServiceName string            `mapstructure:"service_name" json:"service_name" yaml:"service_name" toml:"service_name"`
	SampleRate  float64           `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate" toml:"sample_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns a disabled configuration sampling every span, should
// the embedder turn it on without touching SampleRate.
func DefaultConfig() Config {
	return Config{SampleRate: 1.0}
}

var validate = validator.New()

// Validate runs struct-tag validation, matching the sample-rate bound the
// original OpenTelemetry config enforced before handing it to the exporter.
func (c Config) Validate() aeroerr.Error {
	if err := validate.Struct(c); err != nil {
		return aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "otel config: %s", err.Error())
	}
	return nil
}
