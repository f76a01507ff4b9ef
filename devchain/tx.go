// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package devchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/vm"
)

// effectiveGasPrice returns the price per gas a transaction pays in a block with the base fee.
func effectiveGasPrice(tx *types.Transaction, baseFee *big.Int) *big.Int {
	price := new(big.Int).Add(baseFee, tx.GasTipCap())
	if price.Cmp(tx.GasFeeCap()) > 0 {
		return new(big.Int).Set(tx.GasFeeCap())
	}
	return price
}

func bloom(logs []*types.Log) types.Bloom {
	var b types.Bloom
	for _, l := range logs {
		b.Add(l.Address.Bytes())
		for _, topic := range l.Topics {
			b.Add(topic[:])
		}
	}
	return b
}

func (c *Chain) validate(tx *types.Transaction) (common.Address, error) {
	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid sender: %w", err)
	}
	if _, known := c.txs[tx.Hash()]; known {
		return from, ErrAlreadyKnown
	}
	nonce := c.state.GetNonce(from)
	if tx.Nonce() < nonce {
		return from, fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow, from, tx.Nonce(), nonce)
	}
	if tx.Nonce() > nonce {
		return from, fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh, from, tx.Nonce(), nonce)
	}
	if tx.Gas() > DefaultGasLimit {
		return from, ErrGasLimit
	}
	if intrinsic := vm.IntrinsicGas(tx.Data(), tx.To() == nil); tx.Gas() < intrinsic {
		return from, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, tx.Gas(), intrinsic)
	}
	if tx.GasFeeCap().Cmp(BaseFee) < 0 {
		return from, fmt.Errorf("%w: address %v, maxFeePerGas: %v, baseFee: %v", ErrFeeCapTooLow, from, tx.GasFeeCap(), BaseFee)
	}
	cost := new(big.Int).Mul(tx.GasFeeCap(), new(big.Int).SetUint64(tx.Gas()))
	cost.Add(cost, tx.Value())
	if balance := c.state.GetBalance(from).ToBig(); balance.Cmp(cost) < 0 {
		return from, fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, from, balance, cost)
	}
	return from, nil
}

// SendTransaction validates a signed transaction and mines it in a new block.
// A transaction that fails during execution is still mined, with a failed receipt,
// and the revert is returned.
func (c *Chain) SendTransaction(tx *types.Transaction) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	from, err := c.validate(tx)
	if err != nil {
		logger.Debug("transaction rejected", "hash", tx.Hash(), "from", from, "err", err)
		return err
	}

	var res *vm.Result
	b := c.seal(tx, func(header *types.Header) *types.Receipt {
		res = c.execute(header, from, tx)

		receipt := &types.Receipt{
			Type:              tx.Type(),
			Status:            types.ReceiptStatusSuccessful,
			CumulativeGasUsed: res.GasUsed,
			TxHash:            tx.Hash(),
			GasUsed:           res.GasUsed,
			EffectiveGasPrice: effectiveGasPrice(tx, header.BaseFee),
			BlockNumber:       new(big.Int).Set(header.Number),
			TransactionIndex:  0,
			Logs:              []*types.Log{},
		}
		if tx.To() == nil {
			receipt.ContractAddress = res.ContractAddress
		}
		if res.Failed() {
			receipt.Status = types.ReceiptStatusFailed
		} else {
			for i, l := range res.Logs {
				l.TxHash = tx.Hash()
				l.TxIndex = 0
				l.Index = uint(i)
				l.BlockNumber = header.Number.Uint64()
			}
			receipt.Logs = res.Logs
		}
		receipt.Bloom = bloom(receipt.Logs)
		return receipt
	})

	status := "success"
	if res.Failed() {
		status = "reverted"
	}
	metricTxs().AddWithLabel(1, map[string]string{"status": status})
	logger.Debug("transaction mined", "hash", tx.Hash(), "from", from, "number", b.header.Number, "gasUsed", res.GasUsed, "status", status)

	if res.Failed() {
		return c.executionError(res.Err)
	}
	return nil
}

// execute runs tx in the state of the block being sealed. Nonce and fees are
// charged whatever the outcome.
func (c *Chain) execute(header *types.Header, from common.Address, tx *types.Transaction) *vm.Result {
	price := uint256.MustFromBig(effectiveGasPrice(tx, header.BaseFee))
	prepaid := new(uint256.Int).Mul(price, uint256.NewInt(tx.Gas()))
	c.state.SubBalance(from, prepaid)
	c.state.SetNonce(from, tx.Nonce()+1)

	block := vm.BlockContext{
		Number:   header.Number.Uint64(),
		Time:     header.Time,
		GasLimit: header.GasLimit,
		Coinbase: header.Coinbase,
		ChainID:  c.chainID,
	}
	txCtx := vm.TransactionContext{
		Hash:     tx.Hash(),
		Origin:   from,
		GasPrice: price.ToBig(),
	}
	res := vm.New(c.registry, c.state, block, txCtx).Apply(&vm.Message{
		From:  from,
		To:    tx.To(),
		Nonce: tx.Nonce(),
		Value: uint256.MustFromBig(tx.Value()),
		Data:  tx.Data(),
		Gas:   tx.Gas(),
	})

	refund := new(uint256.Int).Mul(price, uint256.NewInt(tx.Gas()-res.GasUsed))
	c.state.AddBalance(from, refund)
	c.state.AddBalance(header.Coinbase, new(uint256.Int).Sub(prepaid, refund))
	c.state.Commit()
	return res
}

func (c *Chain) executionError(err error) error {
	if vm.IsRevert(err) {
		return newRevertError(err)
	}
	return err
}

// simulate runs msg against the pending block and discards its changes.
func (c *Chain) simulate(msg ethereum.CallMsg) *vm.Result {
	gas := msg.Gas
	if gas == 0 {
		gas = DefaultGasLimit
	}
	value := new(uint256.Int)
	if msg.Value != nil {
		value = uint256.MustFromBig(msg.Value)
	}

	checkpoint := c.state.NewCheckpoint()
	defer c.state.RevertTo(checkpoint)

	return vm.New(c.registry, c.state, c.pendingContext(), vm.TransactionContext{Origin: msg.From}).Apply(&vm.Message{
		From:  msg.From,
		To:    msg.To,
		Nonce: c.state.GetNonce(msg.From),
		Value: value,
		Data:  msg.Data,
		Gas:   gas,
	})
}

// CallContract executes a message call without mining it.
func (c *Chain) CallContract(msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.checkStateAt(number); err != nil {
		return nil, err
	}
	res := c.simulate(msg)
	if res.Failed() {
		return nil, c.executionError(res.Err)
	}
	return res.ReturnData, nil
}

// EstimateGas returns the gas msg uses when executed in the pending block.
// Native contracts meter deterministically, so the estimate is exact.
func (c *Chain) EstimateGas(msg ethereum.CallMsg) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	res := c.simulate(msg)
	if res.Failed() {
		if vm.IsOutOfGas(res.Err) {
			return 0, fmt.Errorf("gas required exceeds allowance (%d)", res.GasUsed)
		}
		return 0, c.executionError(res.Err)
	}
	return res.GasUsed, nil
}

// SuggestGasPrice returns a legacy gas price that gets a transaction mined.
func (c *Chain) SuggestGasPrice() *big.Int {
	return new(big.Int).Add(BaseFee, DefaultTip)
}

// SuggestGasTipCap returns the suggested priority fee.
func (c *Chain) SuggestGasTipCap() *big.Int {
	return new(big.Int).Set(DefaultTip)
}
