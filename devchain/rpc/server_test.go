// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-staking/stakedeploy/chainclient"
	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/devchain"
	"github.com/ali-staking/stakedeploy/reverts"
)

const genesisTime = 1_700_000_000

func newTestClient(t *testing.T) (*chainclient.RPCClient, *devchain.Chain) {
	chain := devchain.New(devchain.WithClock(func() time.Time { return time.Unix(genesisTime, 0) }))
	server, err := NewServer(chain)
	require.NoError(t, err)
	t.Cleanup(server.Stop)

	client := ethrpc.DialInProc(server)
	t.Cleanup(client.Close)
	return chainclient.NewRPCClient(client), chain
}

func TestQuantity(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"0x10"`), &q))
	assert.Equal(t, Quantity(16), q)
	require.NoError(t, json.Unmarshal([]byte(`3600`), &q))
	assert.Equal(t, Quantity(3600), q)
	assert.Error(t, json.Unmarshal([]byte(`"10"`), &q))
	assert.Error(t, json.Unmarshal([]byte(`-1`), &q))
}

func TestChainInfo(t *testing.T) {
	client, chain := newTestClient(t)
	ctx := context.Background()

	id, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(devchain.DefaultChainID), id)

	accounts, err := client.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, len(chain.Accounts()))
	assert.Equal(t, chain.Accounts()[0].Address, accounts[0])

	balance, err := client.BalanceAt(ctx, accounts[0], nil)
	require.NoError(t, err)
	assert.Equal(t, devchain.DefaultBalance, balance)

	header, err := client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesisTime), header.Time)
	assert.Equal(t, uint64(0), header.Number.Uint64())

	_, err = client.HeaderByNumber(ctx, big.NewInt(5))
	assert.ErrorIs(t, err, ethereum.NotFound)

	price, err := client.SuggestGasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, chain.SuggestGasPrice(), price)

	_, err = client.TransactionReceipt(ctx, header.Hash())
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestTransactions(t *testing.T) {
	client, chain := newTestClient(t)
	ctx := context.Background()
	owner, other := chain.Accounts()[0], chain.Accounts()[1]

	data, err := contracts.TokenMock.Artifact().CreationData("ALI", "ALI ERC20 Mock", big.NewInt(1000))
	require.NoError(t, err)
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: owner.Address, Data: data})
	require.NoError(t, err)

	tx, err := types.SignNewTx(owner.PrivateKey, chain.Signer(), &types.DynamicFeeTx{
		ChainID:   chain.ChainID(),
		GasTipCap: devchain.DefaultTip,
		GasFeeCap: chain.SuggestGasPrice(),
		Gas:       gas,
		Data:      data,
	})
	require.NoError(t, err)
	require.NoError(t, client.SendTransaction(ctx, tx))

	receipt, err := client.TransactionReceipt(ctx, tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	token := receipt.ContractAddress

	code, err := client.CodeAt(ctx, token, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.TokenMock.Bytecode(), code)

	// total supply lives in slot 2
	supply, err := client.StorageAt(ctx, token, common.BigToHash(big.NewInt(2)), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), new(big.Int).SetBytes(supply))

	// reverts carry their reason over json-rpc
	transfer, err := contracts.TokenMock.ABI.Pack("transfer", owner.Address, big.NewInt(1))
	require.NoError(t, err)
	_, err = client.CallContract(ctx, ethereum.CallMsg{From: other.Address, To: &token, Data: transfer}, nil)
	reason, ok := reverts.Reason(err)
	require.True(t, ok)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", reason)

	tx, err = types.SignNewTx(other.PrivateKey, chain.Signer(), &types.DynamicFeeTx{
		ChainID:   chain.ChainID(),
		GasTipCap: devchain.DefaultTip,
		GasFeeCap: chain.SuggestGasPrice(),
		Gas:       100_000,
		To:        &token,
		Data:      transfer,
	})
	require.NoError(t, err)
	err = client.SendTransaction(ctx, tx)
	reason, ok = reverts.Reason(err)
	require.True(t, ok)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", reason)

	receipt, err = client.TransactionReceipt(ctx, tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)

	nonce, err := client.PendingNonceAt(ctx, other.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestEvm(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	id, err := client.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, client.IncreaseTime(ctx, 3600))
	require.NoError(t, client.Mine(ctx))
	header, err := client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesisTime+3600), header.Time)

	assert.Error(t, client.SetNextBlockTimestamp(ctx, genesisTime))
	require.NoError(t, client.SetNextBlockTimestamp(ctx, genesisTime+7200))
	require.NoError(t, client.Mine(ctx))
	header, err = client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesisTime+7200), header.Time)

	n, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	require.NoError(t, client.Revert(ctx, id))
	n, err = client.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	assert.ErrorIs(t, client.Revert(ctx, id), chainclient.ErrRevertSnapshot)
}
