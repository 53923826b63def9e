package dpp

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Network identifies the chain a payment terms document is meant for.
type Network string

// Networks defined by the TSC Direct Payment Protocol.
const (
	NetworkRegtest Network = "regtest"
	NetworkTestnet Network = "testnet"
	NetworkSTN     Network = "stn"
	NetworkMainnet Network = "mainnet"
)

// Legacy network values sent by some merchants, accepted only in vendor mode.
const (
	NetworkHandCash Network = "bitcoin"
	NetworkBIP270   Network = "bitcoin-sv"
)

// BIP276 network codes which go-sdk does not define.
const (
	bip276NetworkSTN     = 3
	bip276NetworkRegtest = 4
)

// IsStandard reports whether the network is one of the values defined by the protocol.
func (n Network) IsStandard() bool {
	switch n {
	case NetworkRegtest, NetworkTestnet, NetworkSTN, NetworkMainnet:
		return true
	default:
		return false
	}
}

// BIP276Network returns the BIP276 network code used to encode display addresses.
func (n Network) BIP276Network() (int, error) {
	switch n {
	case NetworkMainnet:
		return script.NetworkMainnet, nil
	case NetworkTestnet:
		return script.NetworkTestnet, nil
	case NetworkSTN:
		return bip276NetworkSTN, nil
	case NetworkRegtest:
		return bip276NetworkRegtest, nil
	default:
		return 0, fmt.Errorf("unhandled network %q", string(n))
	}
}

// ParseNetwork converts the string into one of the standard networks.
func ParseNetwork(value string) (Network, error) {
	network := Network(value)
	if !network.IsStandard() {
		return "", fmt.Errorf("invalid network %q", value)
	}
	return network, nil
}
