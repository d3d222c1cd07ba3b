// Package config defines ListenerConfig and Http2Config, the external
// configuration surface a caller builds before starting a listener:
// struct-tagged (mapstructure/json/yaml/toml) fields, go-playground
// validator constraints, and a Clone method, in the same shape golib's
// httpserver.ServerConfig uses.
package config
