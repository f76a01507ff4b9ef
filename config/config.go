// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the project file describing networks, accounts and paths.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"github.com/ali-staking/stakedeploy/devchain"
)

// DefaultFile is the project file looked up in the working directory.
const DefaultFile = "stakedeploy.yaml"

// HardhatNetwork is the in-process dev chain, always available.
const HardhatNetwork = "hardhat"

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrBadAccount     = errors.New("bad named account")
)

// Network is a chain the tooling can deploy to.
type Network struct {
	// URL of the json-rpc endpoint. Empty means the in-process dev chain.
	URL     string `yaml:"url"`
	ChainID uint64 `yaml:"chainId"`
	// Accounts are hex private keys. The dev chain accounts are used when empty.
	Accounts []string `yaml:"accounts"`
	// GasPrice is the priority fee in wei, or "auto".
	GasPrice string `yaml:"gasPrice"`
	// Dev networks support snapshots and time travel.
	Dev bool `yaml:"dev"`
}

// InProcess reports whether the network is the in-process dev chain.
func (n *Network) InProcess() bool { return n.URL == "" }

// Keys parses the account keys.
func (n *Network) Keys() ([]*ecdsa.PrivateKey, error) {
	if len(n.Accounts) == 0 && n.InProcess() {
		var keys []*ecdsa.PrivateKey
		for _, acc := range devchain.DevAccounts() {
			keys = append(keys, acc.PrivateKey)
		}
		return keys, nil
	}
	keys := make([]*ecdsa.PrivateKey, 0, len(n.Accounts))
	for i, hex := range n.Accounts {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// GasTipCap returns the fixed priority fee, nil for auto.
func (n *Network) GasTipCap() (*big.Int, error) {
	if n.GasPrice == "" || n.GasPrice == "auto" {
		return nil, nil
	}
	tip, ok := new(big.Int).SetString(n.GasPrice, 10)
	if !ok || tip.Sign() < 0 {
		return nil, fmt.Errorf("bad gas price %q", n.GasPrice)
	}
	return tip, nil
}

// NamedAccount maps a chain id, or "default", to an address or an account index.
type NamedAccount map[string]string

type Paths struct {
	Artifacts   string `yaml:"artifacts"`
	Deployments string `yaml:"deployments"`
}

// Config is the project configuration.
type Config struct {
	DefaultNetwork string                  `yaml:"defaultNetwork"`
	Networks       map[string]*Network     `yaml:"networks"`
	NamedAccounts  map[string]NamedAccount `yaml:"namedAccounts"`
	Paths          Paths                   `yaml:"paths"`
}

// Default returns the configuration used without a project file.
func Default() *Config {
	return &Config{
		DefaultNetwork: HardhatNetwork,
		Networks:       map[string]*Network{},
		NamedAccounts:  map[string]NamedAccount{},
		Paths: Paths{
			Artifacts:   "artifacts",
			Deployments: "deployments",
		},
	}
}

// Load reads the project file at path. Environment variables in it are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses a project file.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = HardhatNetwork
	}
	if cfg.Networks == nil {
		cfg.Networks = map[string]*Network{}
	}
	hardhat := cfg.Networks[HardhatNetwork]
	if hardhat == nil {
		hardhat = &Network{}
		cfg.Networks[HardhatNetwork] = hardhat
	}
	hardhat.URL = ""
	hardhat.Dev = true
	if hardhat.ChainID == 0 {
		hardhat.ChainID = devchain.DefaultChainID
	}

	for name, n := range cfg.Networks {
		if n == nil {
			return nil, fmt.Errorf("network %s: empty", name)
		}
		if name != HardhatNetwork && n.InProcess() {
			return nil, fmt.Errorf("network %s: url required", name)
		}
		if _, err := n.GasTipCap(); err != nil {
			return nil, fmt.Errorf("network %s: %w", name, err)
		}
	}
	if _, ok := cfg.Networks[cfg.DefaultNetwork]; !ok {
		return nil, fmt.Errorf("default network: %w: %s", ErrUnknownNetwork, cfg.DefaultNetwork)
	}
	return cfg, nil
}

// Network returns the named network, or the default one when name is empty.
func (c *Config) Network(name string) (string, *Network, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return name, n, nil
}

// ResolveNamedAccounts resolves the named accounts for a chain. A value is an address or
// an index into accounts. Names without a value for the chain and no default are left out.
func (c *Config) ResolveNamedAccounts(chainID *big.Int, accounts []common.Address) (map[string]common.Address, error) {
	resolved := make(map[string]common.Address, len(c.NamedAccounts))
	for name, values := range c.NamedAccounts {
		value, ok := values[chainID.String()]
		if !ok {
			if value, ok = values["default"]; !ok {
				continue
			}
		}
		if common.IsHexAddress(value) {
			resolved[name] = common.HexToAddress(value)
			continue
		}
		index, err := strconv.Atoi(value)
		if err != nil || index < 0 || index >= len(accounts) {
			return nil, fmt.Errorf("%w: %s = %q", ErrBadAccount, name, value)
		}
		resolved[name] = accounts[index]
	}
	return resolved, nil
}
