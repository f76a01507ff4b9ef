// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transact signs, sends and waits for transactions on behalf of a set of keys.
package transact

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ali-staking/stakedeploy/chainclient"
	"github.com/ali-staking/stakedeploy/metrics"
)

var logger = log.New("pkg", "transact")

var (
	ErrUnknownAccount = errors.New("no key for account")
	ErrNoAccounts     = errors.New("no accounts")
)

var (
	metricSent     = metrics.LazyLoadCounter("transact_sent_count")
	metricReverted = metrics.LazyLoadCounter("transact_reverted_count")
	metricGasUsed  = metrics.LazyLoadHistogram("transact_gas_used", metrics.BucketGas)
)

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultPollAttempts = 150
)

// FailedError reports a transaction mined with a failed receipt.
type FailedError struct {
	Receipt *types.Receipt
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("transaction %v failed in block %v", e.Receipt.TxHash, e.Receipt.BlockNumber)
}

// Tx describes a transaction to send. Zero Gas means estimate it.
type Tx struct {
	From  common.Address
	To    *common.Address
	Data  []byte
	Value *big.Int
	Gas   uint64
}

func (tx *Tx) callMsg() ethereum.CallMsg {
	return ethereum.CallMsg{
		From:  tx.From,
		To:    tx.To,
		Data:  tx.Data,
		Value: tx.Value,
		Gas:   tx.Gas,
	}
}

// Option configures a transactor.
type Option func(*Transactor)

// WithPolling sets how often and how many times the receipt of a sent transaction is polled.
func WithPolling(interval time.Duration, attempts uint) Option {
	return func(t *Transactor) {
		t.pollInterval = interval
		t.pollAttempts = attempts
	}
}

// WithGasTipCap fixes the priority fee instead of asking the node for one.
func WithGasTipCap(tip *big.Int) Option {
	return func(t *Transactor) {
		t.tipCap = tip
	}
}

// Transactor sends transactions signed by the keys it holds.
type Transactor struct {
	client   chainclient.Client
	chainID  *big.Int
	signer   types.Signer
	keys     map[common.Address]*ecdsa.PrivateKey
	accounts []common.Address

	tipCap       *big.Int
	pollInterval time.Duration
	pollAttempts uint
}

// New creates a transactor. The order of keys is the order of Accounts.
func New(ctx context.Context, client chainclient.Client, keys []*ecdsa.PrivateKey, opts ...Option) (*Transactor, error) {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	t := &Transactor{
		client:       client,
		chainID:      chainID,
		signer:       types.LatestSignerForChainID(chainID),
		keys:         make(map[common.Address]*ecdsa.PrivateKey, len(keys)),
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	for _, key := range keys {
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if _, dup := t.keys[addr]; dup {
			continue
		}
		t.keys[addr] = key
		t.accounts = append(t.accounts, addr)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Transactor) Client() chainclient.Client { return t.client }

func (t *Transactor) ChainID() *big.Int { return new(big.Int).Set(t.chainID) }

// Accounts returns the addresses of the held keys.
func (t *Transactor) Accounts() []common.Address {
	return append([]common.Address(nil), t.accounts...)
}

// Account returns the i-th account.
func (t *Transactor) Account(i int) (common.Address, error) {
	if i < 0 || i >= len(t.accounts) {
		return common.Address{}, fmt.Errorf("%w: index %d of %d", ErrNoAccounts, i, len(t.accounts))
	}
	return t.accounts[i], nil
}

// Call executes a message call against the latest block.
func (t *Transactor) Call(ctx context.Context, from common.Address, to common.Address, data []byte) ([]byte, error) {
	return t.client.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
}

// Send signs and sends tx and waits for its receipt.
// A transaction that would revert is caught by gas estimation and never broadcast.
func (t *Transactor) Send(ctx context.Context, tx *Tx) (*types.Receipt, error) {
	signed, err := t.sign(ctx, tx)
	if err != nil {
		return nil, err
	}

	metricSent().Add(1)
	if err := t.client.SendTransaction(ctx, signed); err != nil {
		metricReverted().Add(1)
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	logger.Debug("transaction sent", "hash", signed.Hash(), "from", tx.From, "to", tx.To, "nonce", signed.Nonce())

	receipt, err := t.WaitMined(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	metricGasUsed().Observe(int64(receipt.GasUsed))
	if receipt.Status != types.ReceiptStatusSuccessful {
		metricReverted().Add(1)
		return receipt, &FailedError{receipt}
	}
	return receipt, nil
}

func (t *Transactor) sign(ctx context.Context, tx *Tx) (*types.Transaction, error) {
	key, ok := t.keys[tx.From]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAccount, tx.From)
	}

	gas := tx.Gas
	if gas == 0 {
		estimated, err := t.client.EstimateGas(ctx, tx.callMsg())
		if err != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
		gas = estimated
	}
	nonce, err := t.client.PendingNonceAt(ctx, tx.From)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	tip := t.tipCap
	if tip == nil {
		if tip, err = t.client.SuggestGasTipCap(ctx); err != nil {
			return nil, fmt.Errorf("suggest gas tip: %w", err)
		}
	}
	head, err := t.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get head: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, common.Big2))

	signed, err := types.SignNewTx(key, t.signer, &types.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        tx.To,
		Value:     tx.Value,
		Data:      tx.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// WaitMined polls the receipt of a sent transaction until it is mined.
func (t *Transactor) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := retry.DoWithData(
		func() (*types.Receipt, error) {
			receipt, err := t.client.TransactionReceipt(ctx, hash)
			if err != nil && !errors.Is(err, ethereum.NotFound) {
				return nil, retry.Unrecoverable(err)
			}
			return receipt, err
		},
		retry.Context(ctx),
		retry.Attempts(t.pollAttempts),
		retry.Delay(t.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Trace("waiting for receipt", "hash", hash, "attempt", n+1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("wait for %v: %w", hash, err)
	}
	return receipt, nil
}
