// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package devchain

import (
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/reverts"
)

const genesisTime = 1_700_000_000

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestChain(t *testing.T) (*Chain, *fakeClock) {
	clock := &fakeClock{time.Unix(genesisTime, 0)}
	return New(WithClock(clock.Now)), clock
}

func signTx(t *testing.T, c *Chain, key *ecdsa.PrivateKey, to *common.Address, data []byte, gas uint64) *types.Transaction {
	nonce, err := c.NonceAt(crypto.PubkeyToAddress(key.PublicKey), nil)
	require.NoError(t, err)
	tx, err := types.SignNewTx(key, c.Signer(), &types.DynamicFeeTx{
		ChainID:   c.ChainID(),
		Nonce:     nonce,
		GasTipCap: DefaultTip,
		GasFeeCap: new(big.Int).Mul(BaseFee, big.NewInt(2)),
		Gas:       gas,
		To:        to,
		Data:      data,
	})
	require.NoError(t, err)
	return tx
}

func deployToken(t *testing.T, c *Chain, key *ecdsa.PrivateKey) common.Address {
	data, err := contracts.TokenMock.Artifact().CreationData("ALI", "ALI ERC20 Mock", big.NewInt(1000))
	require.NoError(t, err)
	tx := signTx(t, c, key, nil, data, 1_000_000)
	require.NoError(t, c.SendTransaction(tx))

	receipt, err := c.TransactionReceipt(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	return receipt.ContractAddress
}

func TestGenesis(t *testing.T) {
	c, _ := newTestChain(t)

	assert.Equal(t, uint64(0), c.BlockNumber())
	assert.Equal(t, big.NewInt(DefaultChainID), c.ChainID())

	header, err := c.HeaderByNumber(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesisTime), header.Time)
	assert.Equal(t, BaseFee, header.BaseFee)

	for _, acc := range c.Accounts() {
		balance, err := c.BalanceAt(acc.Address, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultBalance, balance)
	}

	extra := common.HexToAddress("0x1234")
	c = New(WithAlloc(extra, big.NewInt(7)), WithChainID(1))
	balance, err := c.BalanceAt(extra, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), balance)
	assert.Equal(t, big.NewInt(1), c.ChainID())
}

func TestTransfer(t *testing.T) {
	c, _ := newTestChain(t)
	from, to := c.Accounts()[0], c.Accounts()[1]

	tx, err := types.SignNewTx(from.PrivateKey, c.Signer(), &types.DynamicFeeTx{
		ChainID:   c.ChainID(),
		GasTipCap: DefaultTip,
		GasFeeCap: new(big.Int).Mul(BaseFee, big.NewInt(2)),
		Gas:       ethparams.TxGas,
		To:        &to.Address,
		Value:     big.NewInt(ethparams.Ether),
	})
	require.NoError(t, err)
	require.NoError(t, c.SendTransaction(tx))
	assert.Equal(t, uint64(1), c.BlockNumber())

	receipt, err := c.TransactionReceipt(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, ethparams.TxGas, receipt.GasUsed)
	assert.Equal(t, big.NewInt(1), receipt.BlockNumber)

	gasPrice := new(big.Int).Add(BaseFee, DefaultTip)
	assert.Equal(t, gasPrice, receipt.EffectiveGasPrice)
	fee := new(big.Int).Mul(gasPrice, big.NewInt(int64(ethparams.TxGas)))

	balance, err := c.BalanceAt(from.Address, nil)
	require.NoError(t, err)
	want := new(big.Int).Sub(DefaultBalance, big.NewInt(ethparams.Ether))
	assert.Equal(t, want.Sub(want, fee), balance)

	balance, err = c.BalanceAt(to.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(DefaultBalance, big.NewInt(ethparams.Ether)), balance)

	block, err := c.BlockByNumber(big.NewInt(1))
	require.NoError(t, err)
	require.Len(t, block.Transactions(), 1)
	assert.Equal(t, tx.Hash(), block.Transactions()[0].Hash())
	assert.Equal(t, block.Hash(), receipt.BlockHash)

	mined, err := c.TransactionByHash(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), mined.Hash())

	assert.ErrorIs(t, c.SendTransaction(tx), ErrAlreadyKnown)
}

func TestValidation(t *testing.T) {
	c, _ := newTestChain(t)
	key := c.Accounts()[0].PrivateKey
	to := c.Accounts()[1].Address

	sign := func(inner *types.DynamicFeeTx) *types.Transaction {
		inner.ChainID = c.ChainID()
		inner.To = &to
		tx, err := types.SignNewTx(key, c.Signer(), inner)
		require.NoError(t, err)
		return tx
	}
	feeCap := new(big.Int).Mul(BaseFee, big.NewInt(2))

	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Nonce: 1, Gas: ethparams.TxGas, GasFeeCap: feeCap})), ErrNonceTooHigh)
	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: DefaultGasLimit + 1, GasFeeCap: feeCap})), ErrGasLimit)
	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: ethparams.TxGas - 1, GasFeeCap: feeCap})), ErrIntrinsicGas)
	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: ethparams.TxGas, GasFeeCap: big.NewInt(1)})), ErrFeeCapTooLow)
	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: ethparams.TxGas, GasFeeCap: feeCap, Value: DefaultBalance})), ErrInsufficientFunds)
	assert.Equal(t, uint64(0), c.BlockNumber(), "rejected transactions are not mined")

	require.NoError(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: ethparams.TxGas, GasFeeCap: feeCap})))
	assert.ErrorIs(t, c.SendTransaction(sign(&types.DynamicFeeTx{Gas: ethparams.TxGas + 1, GasFeeCap: feeCap})), ErrNonceTooLow)

	wrongChain, err := types.SignNewTx(key, types.LatestSignerForChainID(big.NewInt(1)), &types.DynamicFeeTx{
		ChainID: big.NewInt(1), Nonce: 1, Gas: ethparams.TxGas, GasFeeCap: feeCap, To: &to,
	})
	require.NoError(t, err)
	assert.Error(t, c.SendTransaction(wrongChain))
}

func TestContractCalls(t *testing.T) {
	c, _ := newTestChain(t)
	owner, other := c.Accounts()[0], c.Accounts()[1]
	token := deployToken(t, c, owner.PrivateKey)

	code, err := c.CodeAt(token, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.TokenMock.Bytecode(), code)

	balanceOf, err := contracts.TokenMock.ABI.Pack("balanceOf", owner.Address)
	require.NoError(t, err)
	ret, err := c.CallContract(ethereum.CallMsg{To: &token, Data: balanceOf}, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), new(big.Int).SetBytes(ret))

	transfer, err := contracts.TokenMock.ABI.Pack("transfer", other.Address, big.NewInt(10))
	require.NoError(t, err)
	gas, err := c.EstimateGas(ethereum.CallMsg{From: owner.Address, To: &token, Data: transfer})
	require.NoError(t, err)

	tx := signTx(t, c, owner.PrivateKey, &token, transfer, gas)
	require.NoError(t, c.SendTransaction(tx), "the estimate is enough to execute")
	receipt, err := c.TransactionReceipt(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, gas, receipt.GasUsed)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, token, receipt.Logs[0].Address)
	assert.Equal(t, receipt.BlockHash, receipt.Logs[0].BlockHash)
	assert.True(t, types.BloomLookup(receipt.Bloom, token))

	// historical state is not kept
	_, err = c.CallContract(ethereum.CallMsg{To: &token, Data: balanceOf}, big.NewInt(1))
	assert.ErrorIs(t, err, ErrHistoricalState)
	_, err = c.CallContract(ethereum.CallMsg{To: &token, Data: balanceOf}, big.NewInt(2))
	assert.NoError(t, err)

	_, err = c.EstimateGas(ethereum.CallMsg{From: owner.Address, To: &token, Data: transfer, Gas: 21_600})
	assert.ErrorContains(t, err, "gas required exceeds allowance")
}

func TestRevertedTransaction(t *testing.T) {
	c, _ := newTestChain(t)
	owner, other := c.Accounts()[0], c.Accounts()[1]
	token := deployToken(t, c, owner.PrivateKey)

	transfer, err := contracts.TokenMock.ABI.Pack("transfer", owner.Address, big.NewInt(1))
	require.NoError(t, err)

	_, err = c.CallContract(ethereum.CallMsg{From: other.Address, To: &token, Data: transfer}, nil)
	var revertErr *RevertError
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", revertErr.Reason())

	_, err = c.EstimateGas(ethereum.CallMsg{From: other.Address, To: &token, Data: transfer})
	reason, ok := reverts.Reason(err)
	assert.True(t, ok)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", reason)

	// still mined, with a failed receipt
	tx := signTx(t, c, other.PrivateKey, &token, transfer, 100_000)
	err = c.SendTransaction(tx)
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, "execution reverted: ERC20: transfer amount exceeds balance", err.Error())
	assert.Equal(t, 3, revertErr.ErrorCode())

	receipt, err := c.TransactionReceipt(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	assert.Empty(t, receipt.Logs)

	nonce, err := c.NonceAt(other.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce, "a failed transaction still uses its nonce")
}

func TestBlockTime(t *testing.T) {
	c, clock := newTestChain(t)

	// the clock did not move, blocks still get increasing times
	assert.Equal(t, uint64(genesisTime+1), c.Mine().Time)
	assert.Equal(t, uint64(genesisTime+2), c.Mine().Time)

	clock.now = clock.now.Add(100 * time.Second)
	assert.Equal(t, uint64(genesisTime+100), c.Mine().Time)

	assert.Equal(t, int64(3600), c.IncreaseTime(3600))
	assert.Equal(t, uint64(genesisTime+3700), c.Mine().Time)

	err := c.SetNextBlockTimestamp(genesisTime + 3700)
	assert.ErrorIs(t, err, ErrTimestamp)

	require.NoError(t, c.SetNextBlockTimestamp(genesisTime+10_000))
	assert.Equal(t, uint64(genesisTime+10_000), c.Mine().Time)

	// later blocks continue from the fixed time
	clock.now = clock.now.Add(5 * time.Second)
	assert.Equal(t, uint64(genesisTime+10_005), c.Mine().Time)
}

func TestSnapshot(t *testing.T) {
	c, _ := newTestChain(t)
	owner := c.Accounts()[0]

	first := c.Snapshot()
	token := deployToken(t, c, owner.PrivateKey)
	c.IncreaseTime(1000)
	second := c.Snapshot()
	assert.NotEqual(t, first, second)

	c.Mine()
	require.NoError(t, c.Revert(second))
	assert.Equal(t, uint64(1), c.BlockNumber())
	assert.ErrorIs(t, c.Revert(second), ErrUnknownSnapshot, "a snapshot is used up by reverting to it")

	deployed := c.Snapshot()
	require.NoError(t, c.Revert(first))
	assert.Equal(t, uint64(0), c.BlockNumber())
	assert.ErrorIs(t, c.Revert(deployed), ErrUnknownSnapshot, "later snapshots are dropped")

	code, err := c.CodeAt(token, nil)
	require.NoError(t, err)
	assert.Empty(t, code)
	nonce, err := c.NonceAt(owner.Address, nil)
	require.NoError(t, err)
	assert.Zero(t, nonce)
	balance, err := c.BalanceAt(owner.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalance, balance)

	assert.Equal(t, uint64(genesisTime+1), c.Mine().Time, "time offset is restored")
}

func TestRevertDropsReceipts(t *testing.T) {
	c, _ := newTestChain(t)
	owner := c.Accounts()[0]

	id := c.Snapshot()
	data, err := contracts.TokenMock.Artifact().CreationData("ALI", "ALI ERC20 Mock", big.NewInt(1))
	require.NoError(t, err)
	tx := signTx(t, c, owner.PrivateKey, nil, data, 1_000_000)
	require.NoError(t, c.SendTransaction(tx))
	require.NoError(t, c.Revert(id))

	_, err = c.TransactionReceipt(tx.Hash())
	assert.ErrorIs(t, err, ethereum.NotFound)
	_, err = c.TransactionByHash(tx.Hash())
	assert.ErrorIs(t, err, ethereum.NotFound)

	// the same transaction can be mined again
	require.NoError(t, c.SendTransaction(tx))
}
