// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bindings

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/transact"
)

// Token is an ERC20 token.
type Token struct {
	*Contract
}

// NewToken binds the token at address.
func NewToken(address common.Address, transactor *transact.Transactor) *Token {
	return &Token{NewContract(address, contracts.TokenMock.ABI, transactor)}
}

// TransferEvent is an ERC20 Transfer log.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// ApprovalEvent is an ERC20 Approval log.
type ApprovalEvent struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
}

func (t *Token) Name(ctx context.Context) (string, error) {
	var name string
	err := t.Call(ctx, &name, "name")
	return name, err
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	var symbol string
	err := t.Call(ctx, &symbol, "symbol")
	return symbol, err
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	err := t.Call(ctx, &decimals, "decimals")
	return decimals, err
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	var supply *big.Int
	err := t.Call(ctx, &supply, "totalSupply")
	return supply, err
}

func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := t.Call(ctx, &balance, "balanceOf", account)
	return balance, err
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	err := t.Call(ctx, &allowance, "allowance", owner, spender)
	return allowance, err
}

func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "transfer", to, amount)
}

func (t *Token) Approve(ctx context.Context, from, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "approve", spender, amount)
}

func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, spender, "transferFrom", from, to, amount)
}

func (t *Token) IncreaseAllowance(ctx context.Context, from, spender common.Address, added *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "increaseAllowance", spender, added)
}

func (t *Token) DecreaseAllowance(ctx context.Context, from, spender common.Address, subtracted *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "decreaseAllowance", spender, subtracted)
}

// TransferEvents returns the Transfer logs of receipt.
func (t *Token) TransferEvents(receipt *types.Receipt) ([]*TransferEvent, error) {
	fields, err := t.Events(receipt, "Transfer")
	if err != nil {
		return nil, err
	}
	events := make([]*TransferEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &TransferEvent{
			From:  f["from"].(common.Address),
			To:    f["to"].(common.Address),
			Value: f["value"].(*big.Int),
		})
	}
	return events, nil
}

// ApprovalEvents returns the Approval logs of receipt.
func (t *Token) ApprovalEvents(receipt *types.Receipt) ([]*ApprovalEvent, error) {
	fields, err := t.Events(receipt, "Approval")
	if err != nil {
		return nil, err
	}
	events := make([]*ApprovalEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &ApprovalEvent{
			Owner:   f["owner"].(common.Address),
			Spender: f["spender"].(common.Address),
			Value:   f["value"].(*big.Int),
		})
	}
	return events, nil
}
