package http2

import "encoding/binary"

// SettingID is a SETTINGS parameter identifier (RFC 9113 §6.5.2).
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

const (
	minMaxFrameSize = 16384
	maxMaxFrameSize = 16777215
	maxWindowSize   = 1<<31 - 1
)

// Settings is a peer's SETTINGS snapshot. Its zero value is not RFC 9113's
// defaults; DefaultSettings returns those.
type Settings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    uint32

	hasMaxConcurrentStreams bool
	hasMaxHeaderListSize    bool
}

// DefaultSettings returns the RFC 9113 §6.5.2 default values.
func DefaultSettings() Settings {
	return Settings{
		HeaderTableSize:      4096,
		EnablePush:           false,
		InitialWindowSize:    65535,
		MaxFrameSize:         16384,
		MaxHeaderListSize:    1 << 20,
		hasMaxHeaderListSize: false,
	}
}

// SettingsEntry is one (id, value) pair as it appears on the wire.
type SettingsEntry struct {
	ID    SettingID
	Value uint32
}

// ParseSettingsPayload decodes a SETTINGS frame payload into entries. Each
// entry is 6 bytes; a payload whose length is not a multiple of 6 is a
// FRAME_SIZE_ERROR connection error.
func ParseSettingsPayload(payload []byte) ([]SettingsEntry, error) {
	if len(payload)%6 != 0 {
		return nil, &ConnError{Code: ErrFrameSize, Msg: "SETTINGS payload not a multiple of 6"}
	}
	entries := make([]SettingsEntry, 0, len(payload)/6)
	for i := 0; i+6 <= len(payload); i += 6 {
		id := SettingID(binary.BigEndian.Uint16(payload[i : i+2]))
		val := binary.BigEndian.Uint32(payload[i+2 : i+6])
		entries = append(entries, SettingsEntry{ID: id, Value: val})
	}
	return entries, nil
}

// AppendSettingsPayload appends the wire encoding of entries to dst.
func AppendSettingsPayload(dst []byte, entries []SettingsEntry) []byte {
	for _, e := range entries {
		var buf [6]byte
		binary.BigEndian.PutUint16(buf[0:2], uint16(e.ID))
		binary.BigEndian.PutUint32(buf[2:6], e.Value)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// Apply validates and applies entries to s, per the range constraints RFC
// 9113 §6.5.2 names. A parameter outside its legal range is a connection
// error; unknown parameter IDs are ignored (per spec, "ignore unknown").
// windowDelta reports InitialWindowSize's signed delta from its prior
// value, 0 if unchanged, for the caller to re-apply to every open stream's
// send window.
func (s *Settings) Apply(entries []SettingsEntry) (windowDelta int64, err error) {
	prevWindow := int64(s.InitialWindowSize)
	for _, e := range entries {
		switch e.ID {
		case SettingHeaderTableSize:
			s.HeaderTableSize = e.Value
		case SettingEnablePush:
			if e.Value > 1 {
				return 0, &ConnError{Code: ErrProtocol, Msg: "invalid ENABLE_PUSH value"}
			}
			s.EnablePush = e.Value == 1
		case SettingMaxConcurrentStreams:
			s.MaxConcurrentStreams = e.Value
			s.hasMaxConcurrentStreams = true
		case SettingInitialWindowSize:
			if e.Value > maxWindowSize {
				return 0, &ConnError{Code: ErrFlowControl, Msg: "INITIAL_WINDOW_SIZE exceeds 2^31-1"}
			}
			s.InitialWindowSize = e.Value
		case SettingMaxFrameSize:
			if e.Value < minMaxFrameSize || e.Value > maxMaxFrameSize {
				return 0, &ConnError{Code: ErrProtocol, Msg: "MAX_FRAME_SIZE out of range"}
			}
			s.MaxFrameSize = e.Value
		case SettingMaxHeaderListSize:
			s.MaxHeaderListSize = e.Value
			s.hasMaxHeaderListSize = true
		default:
			// unknown parameter: ignore per RFC 9113 §6.5.2.
		}
	}
	return int64(s.InitialWindowSize) - prevWindow, nil
}

// Entries renders s as the wire entries to send in an outbound SETTINGS
// frame. HeaderTableSize, InitialWindowSize, MaxFrameSize and EnablePush
// (always 0, since push is never supported) are always included;
// MaxConcurrentStreams and MaxHeaderListSize only when they were set.
func (s Settings) Entries() []SettingsEntry {
	entries := []SettingsEntry{
		{ID: SettingHeaderTableSize, Value: s.HeaderTableSize},
		{ID: SettingEnablePush, Value: 0},
		{ID: SettingInitialWindowSize, Value: s.InitialWindowSize},
		{ID: SettingMaxFrameSize, Value: s.MaxFrameSize},
	}
	if s.hasMaxConcurrentStreams {
		entries = append(entries, SettingsEntry{ID: SettingMaxConcurrentStreams, Value: s.MaxConcurrentStreams})
	}
	if s.hasMaxHeaderListSize {
		entries = append(entries, SettingsEntry{ID: SettingMaxHeaderListSize, Value: s.MaxHeaderListSize})
	}
	return entries
}
