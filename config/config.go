package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/router"
)

// TLSConfig is the subset of certificate material and negotiation policy
// a listener needs; certificates.Resolver turns this into a *tls.Config.
type TLSConfig struct {
	CertFile string `mapstructure:"cert_file" json:"cert_file" yaml:"cert_file" toml:"cert_file" validate:"required_with=KeyFile,omitempty,file"`
	KeyFile  string `mapstructure:"key_file" json:"key_file" yaml:"key_file" toml:"key_file" validate:"required_with=CertFile,omitempty,file"`

	ClientCAFile  string `mapstructure:"client_ca_file" json:"client_ca_file" yaml:"client_ca_file" toml:"client_ca_file" validate:"omitempty,file"`
	RequireClientCert bool `mapstructure:"require_client_cert" json:"require_client_cert" yaml:"require_client_cert" toml:"require_client_cert"`

	MinVersion string `mapstructure:"min_version" json:"min_version" yaml:"min_version" toml:"min_version" validate:"omitempty,oneof=1.0 1.1 1.2 1.3"`

	// NextProtos is the ALPN negotiation order; "h2" must precede
	// "http/1.1" for HTTP/2 to be offered at all.
	NextProtos []string `mapstructure:"next_protos" json:"next_protos" yaml:"next_protos" toml:"next_protos"`
}

// Enabled reports whether any certificate material was configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" || t.KeyFile != ""
}

func (t TLSConfig) clone() TLSConfig {
	c := t
	c.NextProtos = append([]string(nil), t.NextProtos...)
	return c
}

// Http2Config tunes the HTTP/2 connection and stream state machine.
type Http2Config struct {
	// Enabled turns on HTTP/2 (h2 over TLS ALPN, or h2c if AllowCleartext).
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// AllowCleartext permits HTTP/2 without TLS (h2c), negotiated via the
	// Upgrade header or prior knowledge. Off by default.
	AllowCleartext bool `mapstructure:"allow_cleartext" json:"allow_cleartext" yaml:"allow_cleartext" toml:"allow_cleartext"`

	MaxConcurrentStreams uint32 `mapstructure:"max_concurrent_streams" json:"max_concurrent_streams" yaml:"max_concurrent_streams" toml:"max_concurrent_streams" validate:"omitempty,min=1"`

	// InitialWindowSize is this endpoint's advertised per-stream flow
	// control window (SETTINGS_INITIAL_WINDOW_SIZE). RFC 9113 bounds it
	// to [0, 2^31-1].
	InitialWindowSize uint32 `mapstructure:"initial_window_size" json:"initial_window_size" yaml:"initial_window_size" toml:"initial_window_size" validate:"omitempty,max=2147483647"`

	// MaxFrameSize bounds the largest frame payload this endpoint will
	// accept, per RFC 9113 §6.5.2 ([16384, 16777215]).
	MaxFrameSize uint32 `mapstructure:"max_frame_size" json:"max_frame_size" yaml:"max_frame_size" toml:"max_frame_size" validate:"omitempty,min=16384,max=16777215"`

	// HeaderTableSize is SETTINGS_HEADER_TABLE_SIZE: the HPACK dynamic
	// table capacity this endpoint allows the peer's encoder to use.
	HeaderTableSize uint32 `mapstructure:"header_table_size" json:"header_table_size" yaml:"header_table_size" toml:"header_table_size"`

	// MaxHeaderListSize bounds the uncompressed size of a decoded header
	// block, defending against HPACK bombs.
	MaxHeaderListSize uint32 `mapstructure:"max_header_list_size" json:"max_header_list_size" yaml:"max_header_list_size" toml:"max_header_list_size"`

	// GoAwayDrainTimeout bounds how long a connection stays open after
	// GOAWAY is sent, serving already-open streams before a hard close.
	GoAwayDrainTimeout time.Duration `mapstructure:"goaway_drain_timeout" json:"goaway_drain_timeout" yaml:"goaway_drain_timeout" toml:"goaway_drain_timeout"`

	// ConnectAllowlist restricts which :authority values CONNECT tunnels
	// may target; empty means CONNECT is refused entirely.
	ConnectAllowlist []string `mapstructure:"connect_allowlist" json:"connect_allowlist" yaml:"connect_allowlist" toml:"connect_allowlist"`

	// RstStreamRetention bounds the number of recently reset stream IDs
	// a connection remembers, to distinguish a late frame on a closed
	// stream from a protocol error on an unknown one.
	RstStreamRetention int `mapstructure:"rst_stream_retention" json:"rst_stream_retention" yaml:"rst_stream_retention" toml:"rst_stream_retention" validate:"omitempty,min=1"`
}

func (h Http2Config) clone() Http2Config {
	c := h
	c.ConnectAllowlist = append([]string(nil), h.ConnectAllowlist...)
	return c
}

// DefaultHttp2Config returns the RFC 9113-recommended defaults.
func DefaultHttp2Config() Http2Config {
	return Http2Config{
		Enabled:               true,
		MaxConcurrentStreams:  100,
		InitialWindowSize:     65535,
		MaxFrameSize:          16384,
		HeaderTableSize:       4096,
		MaxHeaderListSize:     1 << 20,
		GoAwayDrainTimeout:    5 * time.Second,
		RstStreamRetention:    128,
	}
}

// ListenerConfig is the full configuration of one listening reactor.
type ListenerConfig struct {
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`

	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,hostname_port"`

	ReusePort bool `mapstructure:"reuse_port" json:"reuse_port" yaml:"reuse_port" toml:"reuse_port"`

	MaxHeaderBytes           int `mapstructure:"max_header_bytes" json:"max_header_bytes" yaml:"max_header_bytes" toml:"max_header_bytes" validate:"omitempty,min=1"`
	MaxBodyBytes             int64 `mapstructure:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" validate:"omitempty,min=1"`
	MaxOutboundBufferBytes   int `mapstructure:"max_outbound_buffer_bytes" json:"max_outbound_buffer_bytes" yaml:"max_outbound_buffer_bytes" toml:"max_outbound_buffer_bytes" validate:"omitempty,min=1"`
	MaxRequestsPerConnection int `mapstructure:"max_requests_per_connection" json:"max_requests_per_connection" yaml:"max_requests_per_connection" toml:"max_requests_per_connection" validate:"omitempty,min=1"`

	KeepAliveTimeout  time.Duration `mapstructure:"keep_alive_timeout" json:"keep_alive_timeout" yaml:"keep_alive_timeout" toml:"keep_alive_timeout"`
	HeaderReadTimeout time.Duration `mapstructure:"header_read_timeout" json:"header_read_timeout" yaml:"header_read_timeout" toml:"header_read_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout" json:"tls_handshake_timeout" yaml:"tls_handshake_timeout" toml:"tls_handshake_timeout"`

	SlashPolicy router.SlashPolicy `mapstructure:"slash_policy" json:"slash_policy" yaml:"slash_policy" toml:"slash_policy"`

	TLS   TLSConfig   `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
	Http2 Http2Config `mapstructure:"http2" json:"http2" yaml:"http2" toml:"http2"`
}

// DefaultListenerConfig returns sane defaults for everything but Name and
// Listen, which the caller must set.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		MaxHeaderBytes:           16 * 1024,
		MaxBodyBytes:             10 << 20,
		MaxOutboundBufferBytes:   4 << 20,
		MaxRequestsPerConnection: 1000,
		KeepAliveTimeout:         60 * time.Second,
		HeaderReadTimeout:        10 * time.Second,
		TLSHandshakeTimeout:      5 * time.Second,
		SlashPolicy:              router.SlashStrict,
		Http2:                    DefaultHttp2Config(),
	}
}

// Clone returns a deep copy safe to mutate independently of the receiver.
func (c ListenerConfig) Clone() ListenerConfig {
	c.TLS = c.TLS.clone()
	c.Http2 = c.Http2.clone()
	return c
}

var validate = validator.New()

// Validate runs struct-tag validation and cross-field sanity checks
// (e.g. HTTP/2 being enabled with no TLS and AllowCleartext both unset).
func (c ListenerConfig) Validate() aeroerr.Error {
	if err := validate.Struct(c); err != nil {
		return aeroerr.Wrapf(aeroerr.ConfigInvalid, err, "listener %q: %s", c.Name, err.Error())
	}

	if c.Http2.Enabled && !c.TLS.Enabled() && !c.Http2.AllowCleartext {
		return aeroerr.Newf(aeroerr.ConfigInvalid,
			"listener %q: http2 enabled without TLS requires http2.allow_cleartext", c.Name)
	}

	if c.TLS.Enabled() && c.Http2.Enabled {
		if !containsFold(c.TLS.NextProtos, "h2") {
			return aeroerr.Newf(aeroerr.ConfigInvalid,
				"listener %q: tls.next_protos must include \"h2\" for http2.enabled", c.Name)
		}
	}

	return nil
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
