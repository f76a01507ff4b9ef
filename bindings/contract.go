// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bindings provides typed access to the token and staking contracts.
package bindings

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ali-staking/stakedeploy/abi"
	"github.com/ali-staking/stakedeploy/transact"
)

// Contract is a deployed contract bound to its ABI.
type Contract struct {
	address    common.Address
	abi        *abi.ABI
	transactor *transact.Transactor
}

// NewContract binds the contract at address.
func NewContract(address common.Address, abi *abi.ABI, transactor *transact.Transactor) *Contract {
	return &Contract{address, abi, transactor}
}

func (c *Contract) Address() common.Address { return c.address }

func (c *Contract) ABI() *abi.ABI { return c.abi }

// Call runs a constant method and decodes its output into out.
func (c *Contract) Call(ctx context.Context, out any, method string, args ...any) error {
	m, ok := c.abi.MethodByName(method)
	if !ok {
		return fmt.Errorf("method %s not found", method)
	}
	input, err := m.EncodeInput(args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	output, err := c.transactor.Call(ctx, common.Address{}, c.address, input)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	if err := m.DecodeOutput(output, out); err != nil {
		return fmt.Errorf("unpack %s: %w", method, err)
	}
	return nil
}

// Transact sends a transaction from the given account calling method.
func (c *Contract) Transact(ctx context.Context, from common.Address, method string, args ...any) (*types.Receipt, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	receipt, err := c.transactor.Send(ctx, &transact.Tx{From: from, To: &c.address, Data: input})
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", method, err)
	}
	return receipt, nil
}

// Events decodes the logs of receipt emitted by this contract as the named event.
func (c *Contract) Events(receipt *types.Receipt, name string) ([]map[string]any, error) {
	ev, ok := c.abi.EventByName(name)
	if !ok {
		return nil, fmt.Errorf("event %s not found", name)
	}
	var events []map[string]any
	for _, l := range receipt.Logs {
		if l.Address != c.address || len(l.Topics) == 0 || l.Topics[0] != ev.ID() {
			continue
		}
		fields := make(map[string]any)
		if err := ev.DecodeLog(l, fields); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		events = append(events, fields)
	}
	return events, nil
}
