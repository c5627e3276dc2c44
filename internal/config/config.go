// Package config loads SessionConfig defaults from the process environment (spec §6), using
// caarlos0/env the way absmach-magistrala's internal/env wraps it, replacing the teacher's
// hand-rolled JSON+duration-string config file parser.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"

	"github.com/oarkflow/smpp-server/pkg/smpp"
)

// envSessionConfig mirrors smpp.SessionConfig with struct tags env can parse; kept as a separate
// type since SessionConfig itself deliberately carries no dependency on caarlos0/env tags.
type envSessionConfig struct {
	Address             string        `env:"SMPP_ADDRESS"`
	SystemID            string        `env:"SMPP_SYSTEM_ID"`
	Password            string        `env:"SMPP_PASSWORD"`
	SystemType          string        `env:"SMPP_SYSTEM_TYPE"`
	InterfaceVersion    uint8         `env:"SMPP_INTERFACE_VERSION" envDefault:"52"`
	BindRole            string        `env:"SMPP_BIND_ROLE" envDefault:"transceiver"`
	AddrTON             uint8         `env:"SMPP_ADDR_TON"`
	AddrNPI             uint8         `env:"SMPP_ADDR_NPI"`
	AddressRange        string        `env:"SMPP_ADDRESS_RANGE"`
	EnquireLinkInterval time.Duration `env:"SMPP_ENQUIRE_LINK_INTERVAL" envDefault:"30s"`
	ResponseTimeout     time.Duration `env:"SMPP_RESPONSE_TIMEOUT" envDefault:"60s"`
	MaxRatePerSecond    int           `env:"SMPP_MAX_RATE_PER_SECOND"`
	MaxFrameSize        uint32        `env:"SMPP_MAX_FRAME_SIZE" envDefault:"65536"`
}

// Load returns smpp.DefaultSessionConfig() overridden by any SMPP_* environment variables that
// are set. Address, SystemID, and Password are left to the caller to fill in when absent from
// the environment; Load does not require them.
func Load() (smpp.SessionConfig, error) {
	var e envSessionConfig
	if err := env.Parse(&e); err != nil {
		return smpp.SessionConfig{}, fmt.Errorf("config: %w", err)
	}

	role, err := parseBindRole(e.BindRole)
	if err != nil {
		return smpp.SessionConfig{}, err
	}

	cfg := smpp.DefaultSessionConfig()
	cfg.Address = e.Address
	cfg.SystemID = e.SystemID
	cfg.Password = e.Password
	cfg.SystemType = e.SystemType
	cfg.InterfaceVersion = e.InterfaceVersion
	cfg.BindRole = role
	cfg.AddrTON = e.AddrTON
	cfg.AddrNPI = e.AddrNPI
	cfg.AddressRange = e.AddressRange
	cfg.EnquireLinkInterval = e.EnquireLinkInterval
	cfg.ResponseTimeout = e.ResponseTimeout
	cfg.MaxRatePerSecond = e.MaxRatePerSecond
	cfg.MaxFrameSize = e.MaxFrameSize
	return cfg, nil
}

func parseBindRole(s string) (smpp.BindRole, error) {
	switch s {
	case "transmitter":
		return smpp.RoleTransmitter, nil
	case "receiver":
		return smpp.RoleReceiver, nil
	case "transceiver", "":
		return smpp.RoleTransceiver, nil
	default:
		return 0, fmt.Errorf("config: invalid SMPP_BIND_ROLE %q", s)
	}
}
