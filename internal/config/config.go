// Package config assembles the service configuration from defaults, an
// optional YAML file, and environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coc-platform/evidence-service/pkg/ledger"
)

// IPFSConfig holds the content store connection settings.
type IPFSConfig struct {
	// APIURL is the HTTP API endpoint of the IPFS daemon.
	APIURL string `yaml:"apiUrl"`
}

// AuditConfig holds the local audit trail settings.
type AuditConfig struct {
	// Enabled controls whether pipeline operations are recorded locally.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite file backing the audit trail. ":memory:" is
	// accepted for ephemeral deployments.
	DBPath string `yaml:"dbPath"`

	// RetentionDays is how long audit events are kept. Zero disables the
	// retention sweep.
	RetentionDays int `yaml:"retentionDays"`
}

// Config is the full service configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	IPFS   IPFSConfig    `yaml:"ipfs"`
	Audit  AuditConfig   `yaml:"audit"`
	Chains ledger.Config `yaml:"fabric"`
}

// DefaultConfig returns the configuration used when nothing is specified.
// The Fabric defaults match the lab network's compose topology.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: ":3000",
		LogLevel:   "info",
		IPFS: IPFSConfig{
			APIURL: "http://ipfs:5001",
		},
		Audit: AuditConfig{
			Enabled:       true,
			DBPath:        "/data/audit.db",
			RetentionDays: 365,
		},
		Chains: ledger.Config{
			Hot: ledger.ChainConfig{
				GatewayPeer:     "peer0.laborg.hot.coc.com:7051",
				Channel:         "hot-chain",
				Chaincode:       "hot_chaincode",
				MSPID:           "LabOrgMSP",
				GatewayIdentity: "lab-gw",
				TLSCACert:       "/fabric/hot/tls/ca.crt",
				MSPPath:         "/fabric/hot/gateway/msp",
			},
			Cold: ledger.ChainConfig{
				GatewayPeer:     "peer0.laborg.cold.coc.com:8051",
				Channel:         "cold-chain",
				Chaincode:       "cold_chaincode",
				MSPID:           "LabOrgMSP",
				GatewayIdentity: "lab-gw",
				TLSCACert:       "/fabric/cold/tls/ca.crt",
				MSPPath:         "/fabric/cold/gateway/msp",
			},
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables on top of the current values.
//
// Environment variables:
//   - SERVICE_LISTEN_ADDR: HTTP bind address
//   - LOG_LEVEL: debug, info, warn, error
//   - IPFS_API_URL: IPFS daemon HTTP API endpoint
//   - AUDIT_ENABLED: "true" or "false"
//   - AUDIT_DB_PATH: SQLite file for the audit trail
//   - AUDIT_RETENTION_DAYS: integer, 0 disables the sweep
//   - FABRIC_TLS_ENABLED: "true" or "false", applies to both chains
//   - FABRIC_HOT_GATEWAY_PEER, FABRIC_HOT_CHANNEL, FABRIC_HOT_CHAINCODE,
//     FABRIC_HOT_MSP_ID, FABRIC_HOT_GATEWAY_IDENTITY, FABRIC_HOT_TLS_CA_CERT,
//     FABRIC_HOT_MSP_PATH
//   - FABRIC_COLD_GATEWAY_PEER, FABRIC_COLD_CHANNEL, FABRIC_COLD_CHAINCODE,
//     FABRIC_COLD_MSP_ID, FABRIC_COLD_GATEWAY_IDENTITY,
//     FABRIC_COLD_TLS_CA_CERT, FABRIC_COLD_MSP_PATH
func (c *Config) applyEnv() {
	if v := os.Getenv("SERVICE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("IPFS_API_URL"); v != "" {
		c.IPFS.APIURL = v
	}
	if v := os.Getenv("AUDIT_ENABLED"); v != "" {
		c.Audit.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUDIT_DB_PATH"); v != "" {
		c.Audit.DBPath = v
	}
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days >= 0 {
			c.Audit.RetentionDays = days
		}
	}
	if v := os.Getenv("FABRIC_TLS_ENABLED"); v != "" {
		enabled := parseBool(v)
		c.Chains.Hot.TLSEnabled = enabled
		c.Chains.Cold.TLSEnabled = enabled
	}
	applyChainEnv(&c.Chains.Hot, "FABRIC_HOT_")
	applyChainEnv(&c.Chains.Cold, "FABRIC_COLD_")
}

func applyChainEnv(chain *ledger.ChainConfig, prefix string) {
	if v := os.Getenv(prefix + "GATEWAY_PEER"); v != "" {
		chain.GatewayPeer = v
	}
	if v := os.Getenv(prefix + "CHANNEL"); v != "" {
		chain.Channel = v
	}
	if v := os.Getenv(prefix + "CHAINCODE"); v != "" {
		chain.Chaincode = v
	}
	if v := os.Getenv(prefix + "MSP_ID"); v != "" {
		chain.MSPID = v
	}
	if v := os.Getenv(prefix + "GATEWAY_IDENTITY"); v != "" {
		chain.GatewayIdentity = v
	}
	if v := os.Getenv(prefix + "TLS_CA_CERT"); v != "" {
		chain.TLSCACert = v
	}
	if v := os.Getenv(prefix + "MSP_PATH"); v != "" {
		chain.MSPPath = v
	}
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.IPFS.APIURL == "" {
		return fmt.Errorf("ipfs api url must not be empty")
	}
	for _, chain := range []struct {
		name string
		cfg  ledger.ChainConfig
	}{
		{"hot", c.Chains.Hot},
		{"cold", c.Chains.Cold},
	} {
		if chain.cfg.GatewayPeer == "" {
			return fmt.Errorf("%s chain: gateway peer must not be empty", chain.name)
		}
		if chain.cfg.Channel == "" {
			return fmt.Errorf("%s chain: channel must not be empty", chain.name)
		}
		if chain.cfg.Chaincode == "" {
			return fmt.Errorf("%s chain: chaincode must not be empty", chain.name)
		}
	}
	return nil
}

func parseBool(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
