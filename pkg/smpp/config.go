package smpp

import "time"

// SessionConfig recognizes every option spec §6 names. Defaults are applied by
// internal/config's loader (backed by caarlos0/env) before Dial is called.
type SessionConfig struct {
	Address             string
	SystemID            string
	Password            string
	SystemType          string
	InterfaceVersion    uint8
	BindRole            BindRole
	AddrTON             uint8
	AddrNPI             uint8
	AddressRange        string
	EnquireLinkInterval time.Duration
	ResponseTimeout     time.Duration
	MaxRatePerSecond    int // 0 means unlimited
	MaxFrameSize        uint32
}

// DefaultSessionConfig returns the spec §6 defaults with every other field zero.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		InterfaceVersion:    InterfaceVersion34,
		BindRole:            RoleTransceiver,
		EnquireLinkInterval: 30 * time.Second,
		ResponseTimeout:     60 * time.Second,
		MaxFrameSize:        DefaultMaxFrameSize,
	}
}
