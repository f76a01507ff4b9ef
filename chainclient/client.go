// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainclient defines the chain access the deployment tooling needs, and
// implements it over json-rpc.
package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is the subset of *ethclient.Client the tooling uses.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Snapshotter saves and restores the whole chain, as development nodes do.
type Snapshotter interface {
	Snapshot(ctx context.Context) (uint64, error)
	Revert(ctx context.Context, id uint64) error
}

// TimeTraveler controls the block time of a development node.
type TimeTraveler interface {
	SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error
	IncreaseTime(ctx context.Context, seconds uint64) error
	Mine(ctx context.Context) error
}

// DevClient is a client of a development node.
type DevClient interface {
	Client
	Snapshotter
	TimeTraveler
}

var (
	_ Client    = (*ethclient.Client)(nil)
	_ DevClient = (*RPCClient)(nil)
)

// RPCClient is a json-rpc client. The evm_* methods work against development nodes only.
type RPCClient struct {
	*ethclient.Client
	rpc *rpc.Client
}

// Dial connects to the node at url.
func Dial(ctx context.Context, url string) (*RPCClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewRPCClient(c), nil
}

// NewRPCClient wraps an rpc client.
func NewRPCClient(c *rpc.Client) *RPCClient {
	return &RPCClient{ethclient.NewClient(c), c}
}

// Accounts returns the accounts the node manages.
func (c *RPCClient) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := c.rpc.CallContext(ctx, &accounts, "eth_accounts")
	return accounts, err
}

// Snapshot implements Snapshotter.
func (c *RPCClient) Snapshot(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Revert implements Snapshotter.
func (c *RPCClient) Revert(ctx context.Context, id uint64) error {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "evm_revert", hexutil.Uint64(id)); err != nil {
		return err
	}
	if !ok {
		return ErrRevertSnapshot
	}
	return nil
}

// SetNextBlockTimestamp implements TimeTraveler.
func (c *RPCClient) SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error {
	return c.rpc.CallContext(ctx, nil, "evm_setNextBlockTimestamp", hexutil.Uint64(timestamp))
}

// IncreaseTime implements TimeTraveler.
func (c *RPCClient) IncreaseTime(ctx context.Context, seconds uint64) error {
	return c.rpc.CallContext(ctx, nil, "evm_increaseTime", hexutil.Uint64(seconds))
}

// Mine implements TimeTraveler.
func (c *RPCClient) Mine(ctx context.Context) error {
	return c.rpc.CallContext(ctx, nil, "evm_mine")
}
