// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package devchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ali-staking/stakedeploy/chainclient"
)

var _ chainclient.DevClient = (*Client)(nil)

// Client exposes a chain through the chainclient interfaces, without going through json-rpc.
type Client struct {
	chain *Chain
}

// NewClient creates a client of chain.
func NewClient(chain *Chain) *Client {
	return &Client{chain}
}

// Chain returns the underlying chain.
func (c *Client) Chain() *Chain { return c.chain }

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.ChainID(), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.chain.BlockNumber(), nil
}

func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.HeaderByNumber(number)
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.BalanceAt(account, blockNumber)
}

func (c *Client) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.chain.NonceAt(account, blockNumber)
}

// PendingNonceAt equals NonceAt, nothing stays pending on an automining chain.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.NonceAt(ctx, account, nil)
}

func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.CodeAt(account, blockNumber)
}

func (c *Client) StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.StorageAt(account, key, blockNumber)
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.CallContract(msg, blockNumber)
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.chain.EstimateGas(msg)
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.SuggestGasPrice(), nil
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.SuggestGasTipCap(), nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.chain.SendTransaction(tx)
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.chain.TransactionReceipt(txHash)
}

func (c *Client) Snapshot(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.chain.Snapshot(), nil
}

func (c *Client) Revert(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.chain.Revert(id)
}

func (c *Client) SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.chain.SetNextBlockTimestamp(timestamp)
}

func (c *Client) IncreaseTime(ctx context.Context, seconds uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.chain.IncreaseTime(seconds)
	return nil
}

func (c *Client) Mine(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.chain.Mine()
	return nil
}
