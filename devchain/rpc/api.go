// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/ali-staking/stakedeploy/devchain"
)

// Quantity is a uint64 that decodes from both a json number and a hex string,
// as hardhat accepts either for evm_* arguments.
type Quantity uint64

func (q *Quantity) UnmarshalJSON(input []byte) error {
	if len(input) > 0 && input[0] == '"' {
		var v hexutil.Uint64
		if err := v.UnmarshalJSON(input); err != nil {
			return err
		}
		*q = Quantity(v)
		return nil
	}
	v, err := strconv.ParseUint(string(input), 10, 64)
	if err != nil {
		return err
	}
	*q = Quantity(v)
	return nil
}

// CallArgs are the arguments of eth_call and eth_estimateGas.
type CallArgs struct {
	From                 *common.Address `json:"from"`
	To                   *common.Address `json:"to"`
	Gas                  *hexutil.Uint64 `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas"`
	Value                *hexutil.Big    `json:"value"`
	Data                 *hexutil.Bytes  `json:"data"`
	Input                *hexutil.Bytes  `json:"input"`
}

func (args *CallArgs) toMessage() ethereum.CallMsg {
	var msg ethereum.CallMsg
	if args.From != nil {
		msg.From = *args.From
	}
	msg.To = args.To
	if args.Gas != nil {
		msg.Gas = uint64(*args.Gas)
	}
	msg.GasPrice = (*big.Int)(args.GasPrice)
	msg.GasFeeCap = (*big.Int)(args.MaxFeePerGas)
	msg.GasTipCap = (*big.Int)(args.MaxPriorityFeePerGas)
	msg.Value = (*big.Int)(args.Value)
	// input wins over data, like geth
	if args.Input != nil {
		msg.Data = *args.Input
	} else if args.Data != nil {
		msg.Data = *args.Data
	}
	return msg
}

var errBlockHash = errors.New("block hash selectors are not supported")

func toBigNumber(number ethrpc.BlockNumber) *big.Int {
	if number < 0 {
		return nil
	}
	return big.NewInt(number.Int64())
}

func resolve(blockNrOrHash *ethrpc.BlockNumberOrHash) (*big.Int, error) {
	if blockNrOrHash == nil {
		return nil, nil
	}
	number, ok := blockNrOrHash.Number()
	if !ok {
		return nil, errBlockHash
	}
	return toBigNumber(number), nil
}

// EthAPI serves the eth namespace.
type EthAPI struct {
	chain *devchain.Chain
}

func (api *EthAPI) ChainId() *hexutil.Big { // nolint:revive
	return (*hexutil.Big)(api.chain.ChainID())
}

func (api *EthAPI) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(api.chain.BlockNumber())
}

func (api *EthAPI) Accounts() []common.Address {
	var accounts []common.Address
	for _, acc := range api.chain.Accounts() {
		accounts = append(accounts, acc.Address)
	}
	return accounts
}

func (api *EthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(api.chain.SuggestGasPrice())
}

func (api *EthAPI) MaxPriorityFeePerGas() *hexutil.Big {
	return (*hexutil.Big)(api.chain.SuggestGasTipCap())
}

// GetBlockByNumber returns the block, or nil when it does not exist.
func (api *EthAPI) GetBlockByNumber(number ethrpc.BlockNumber, fullTx bool) (map[string]any, error) {
	block, err := api.chain.BlockByNumber(toBigNumber(number))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(block.Header())
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fullTx {
		fields["transactions"] = block.Transactions()
	} else {
		hashes := make([]common.Hash, 0, len(block.Transactions()))
		for _, tx := range block.Transactions() {
			hashes = append(hashes, tx.Hash())
		}
		fields["transactions"] = hashes
	}
	fields["uncles"] = []common.Hash{}
	fields["size"] = hexutil.Uint64(block.Size())
	return fields, nil
}

func (api *EthAPI) GetBalance(addr common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*hexutil.Big, error) {
	number, err := resolve(&blockNrOrHash)
	if err != nil {
		return nil, err
	}
	balance, err := api.chain.BalanceAt(addr, number)
	return (*hexutil.Big)(balance), err
}

func (api *EthAPI) GetTransactionCount(addr common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*hexutil.Uint64, error) {
	number, err := resolve(&blockNrOrHash)
	if err != nil {
		return nil, err
	}
	nonce, err := api.chain.NonceAt(addr, number)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Uint64)(&nonce), nil
}

func (api *EthAPI) GetCode(addr common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	number, err := resolve(&blockNrOrHash)
	if err != nil {
		return nil, err
	}
	return api.chain.CodeAt(addr, number)
}

func (api *EthAPI) GetStorageAt(addr common.Address, key common.Hash, blockNrOrHash ethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	number, err := resolve(&blockNrOrHash)
	if err != nil {
		return nil, err
	}
	return api.chain.StorageAt(addr, key, number)
}

func (api *EthAPI) Call(args CallArgs, blockNrOrHash *ethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	number, err := resolve(blockNrOrHash)
	if err != nil {
		return nil, err
	}
	return api.chain.CallContract(args.toMessage(), number)
}

func (api *EthAPI) EstimateGas(args CallArgs, _ *ethrpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	gas, err := api.chain.EstimateGas(args.toMessage())
	return hexutil.Uint64(gas), err
}

func (api *EthAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	if err := api.chain.SendTransaction(tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// GetTransactionReceipt returns the receipt, or nil when the transaction is unknown.
func (api *EthAPI) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	receipt, err := api.chain.TransactionReceipt(hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

// NetAPI serves the net namespace.
type NetAPI struct {
	chain *devchain.Chain
}

func (api *NetAPI) Version() string {
	return api.chain.ChainID().String()
}

// EvmAPI serves the evm namespace of development nodes.
type EvmAPI struct {
	chain *devchain.Chain
}

func (api *EvmAPI) SetNextBlockTimestamp(timestamp Quantity) error {
	return api.chain.SetNextBlockTimestamp(uint64(timestamp))
}

// IncreaseTime returns the total time offset in seconds.
func (api *EvmAPI) IncreaseTime(seconds Quantity) int64 {
	return api.chain.IncreaseTime(uint64(seconds))
}

func (api *EvmAPI) Mine() string {
	api.chain.Mine()
	return "0x0"
}

func (api *EvmAPI) Snapshot() hexutil.Uint64 {
	return hexutil.Uint64(api.chain.Snapshot())
}

// Revert reports whether the snapshot existed.
func (api *EvmAPI) Revert(id Quantity) bool {
	return api.chain.Revert(uint64(id)) == nil
}
