// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rpc serves a dev chain over Ethereum json-rpc, with the evm_* methods of development nodes.
package rpc

import (
	"github.com/ethereum/go-ethereum/log"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/ali-staking/stakedeploy/devchain"
)

var logger = log.New("pkg", "devchain/rpc")

// NewServer creates a json-rpc server over chain. The server is an http.Handler.
func NewServer(chain *devchain.Chain) (*ethrpc.Server, error) {
	server := ethrpc.NewServer()
	services := []struct {
		namespace string
		service   any
	}{
		{"eth", &EthAPI{chain}},
		{"net", &NetAPI{chain}},
		{"evm", &EvmAPI{chain}},
	}
	for _, s := range services {
		if err := server.RegisterName(s.namespace, s.service); err != nil {
			server.Stop()
			return nil, err
		}
	}
	logger.Debug("json-rpc services registered", "chainID", chain.ChainID())
	return server, nil
}
