package config

import "strings"

// Network is a Solana cluster name.
type Network string

const (
	NetworkMainnetBeta Network = "mainnet-beta"
	NetworkTestnet     Network = "testnet"
	NetworkDevnet      Network = "devnet"
)

var clusterURLs = map[Network]string{
	NetworkMainnetBeta: "https://api.mainnet-beta.solana.com",
	NetworkTestnet:     "https://api.testnet.solana.com",
	NetworkDevnet:      "https://api.devnet.solana.com",
}

// RPCClientConfig describes the chain endpoint handed to wallet adapters.
type RPCClientConfig struct {
	Network   Network `env:"WALLETGATE_SOLANA_NETWORK" envDefault:"mainnet-beta" json:"network"`
	CustomURL string  `env:"WALLETGATE_SOLANA_RPC_URL"                            json:"-"`

	// Filled in by Resolve.
	URL         string `json:"rpc_url"`
	DisplayName string `json:"display_name"`
}

// Resolve normalises the network, falling back to mainnet-beta for unknown
// names, and fills in the endpoint URL and display name.
func (c RPCClientConfig) Resolve() RPCClientConfig {
	network := Network(strings.ToLower(strings.TrimSpace(string(c.Network))))
	if _, ok := clusterURLs[network]; !ok {
		network = NetworkMainnetBeta
	}
	c.Network = network

	c.URL = clusterURLs[network]
	if custom := strings.TrimSpace(c.CustomURL); custom != "" {
		c.URL = custom
	}
	c.DisplayName = network.DisplayName()
	return c
}

// IsCustom reports whether the endpoint was overridden.
func (c RPCClientConfig) IsCustom() bool {
	return strings.TrimSpace(c.CustomURL) != ""
}

func (n Network) DisplayName() string {
	switch n {
	case NetworkMainnetBeta:
		return "Mainnet"
	case NetworkTestnet:
		return "Testnet"
	case NetworkDevnet:
		return "Devnet"
	default:
		return "Unknown"
	}
}
