package ledger

import "fmt"

// ChainConfig holds everything needed to reach one chain's gateway peer and
// sign transactions against it. Each chain has its own peer, channel,
// chaincode, and MSP material; the two sets share nothing.
type ChainConfig struct {
	// GatewayPeer is the host:port of the Fabric gateway peer.
	GatewayPeer string `yaml:"gatewayPeer"`
	// Channel is the channel name the evidence chaincode is deployed on.
	Channel string `yaml:"channel"`
	// Chaincode is the deployed chaincode name.
	Chaincode string `yaml:"chaincode"`
	// MSPID is the membership service provider id of the gateway identity.
	MSPID string `yaml:"mspId"`
	// GatewayIdentity is the enrollment name of the gateway identity, used
	// only for logging; the actual certificate is read from MSPPath.
	GatewayIdentity string `yaml:"gatewayIdentity"`
	// TLSEnabled turns on TLS for the gRPC transport to the peer.
	TLSEnabled bool `yaml:"tlsEnabled"`
	// TLSCACert is the path to the peer's TLS CA certificate, required when
	// TLSEnabled is set.
	TLSCACert string `yaml:"tlsCaCert"`
	// MSPPath is the gateway identity's MSP directory. The client reads the
	// first file under MSPPath/signcerts and MSPPath/keystore.
	MSPPath string `yaml:"mspPath"`
}

// Config carries the two independent chain configurations.
type Config struct {
	Hot  ChainConfig `yaml:"hot"`
	Cold ChainConfig `yaml:"cold"`
}

// Select returns the configuration for the given chain.
func (c *Config) Select(chain Chain) (ChainConfig, error) {
	switch chain {
	case ChainHot:
		return c.Hot, nil
	case ChainCold:
		return c.Cold, nil
	}
	return ChainConfig{}, fmt.Errorf("no configuration for chain %q", chain)
}
