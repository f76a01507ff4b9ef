// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package deployments keeps track of named contract deployments per chain and runs
// tagged deploy scripts against them.
package deployments

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ali-staking/stakedeploy/abi"
)

// Deployment is the record of a deployed contract.
type Deployment struct {
	Name         string          `json:"name"`
	Contract     string          `json:"contract"`
	Address      common.Address  `json:"address"`
	ABI          json.RawMessage `json:"abi"`
	TxHash       common.Hash     `json:"transactionHash"`
	BlockNumber  uint64          `json:"blockNumber"`
	Deployer     common.Address  `json:"deployer"`
	Args         json.RawMessage `json:"args"`
	ArgsData     hexutil.Bytes   `json:"argsData"`
	BytecodeHash common.Hash     `json:"bytecodeHash"`
	GasUsed      uint64          `json:"gasUsed"`
	Timestamp    uint64          `json:"timestamp"`

	// Newly reports whether the last Deploy created the contract rather than reusing it.
	Newly bool `json:"-"`
}

// ParseABI parses the recorded ABI.
func (d *Deployment) ParseABI() (*abi.ABI, error) {
	parsed, err := abi.New(d.ABI)
	if err != nil {
		return nil, fmt.Errorf("parse abi of %s: %w", d.Name, err)
	}
	return parsed, nil
}

// encodeArgs renders constructor args for humans. Big numbers become decimal strings.
func encodeArgs(args []any) (json.RawMessage, error) {
	rendered := make([]any, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case *big.Int:
			rendered = append(rendered, v.String())
		case []byte:
			rendered = append(rendered, hexutil.Encode(v))
		default:
			rendered = append(rendered, v)
		}
	}
	return json.Marshal(rendered)
}
