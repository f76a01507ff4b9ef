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

// Staking is the staking contract, usually reached through its proxy.
type Staking struct {
	*Contract
}

// NewStaking binds the staking contract, or a proxy of it, at address.
func NewStaking(address common.Address, transactor *transact.Transactor) *Staking {
	return &Staking{NewContract(address, contracts.StakingImpl.ABI, transactor)}
}

// StakedEvent is logged by stake.
type StakedEvent struct {
	User   common.Address
	Amount *big.Int
	Time   *big.Int
}

// WithdrawnEvent is logged by withdraw.
type WithdrawnEvent struct {
	User   common.Address
	Amount *big.Int
	Time   *big.Int
}

// UnlockTimeUpdatedEvent is logged by updateUnlockTime.
type UnlockTimeUpdatedEvent struct {
	Sender     common.Address
	UnlockTime *big.Int
}

// OwnershipTransferredEvent is logged whenever the owner changes.
type OwnershipTransferredEvent struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

func (s *Staking) PostConstruct(ctx context.Context, from, token common.Address, lockupSeconds *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "postConstruct", token, lockupSeconds)
}

func (s *Staking) Stake(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "stake", amount)
}

func (s *Staking) Withdraw(ctx context.Context, from common.Address, amount *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "withdraw", amount)
}

func (s *Staking) UpdateUnlockTime(ctx context.Context, from common.Address, unlockTime *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "updateUnlockTime", unlockTime)
}

func (s *Staking) Pause(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "pause")
}

func (s *Staking) Unpause(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "unpause")
}

func (s *Staking) TransferOwnership(ctx context.Context, from, newOwner common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "transferOwnership", newOwner)
}

func (s *Staking) RenounceOwnership(ctx context.Context, from common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "renounceOwnership")
}

func (s *Staking) UpgradeTo(ctx context.Context, from, implementation common.Address) (*types.Receipt, error) {
	return s.Transact(ctx, from, "upgradeTo", implementation)
}

func (s *Staking) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := s.Call(ctx, &balance, "balanceOf", account)
	return balance, err
}

func (s *Staking) TotalSupply(ctx context.Context) (*big.Int, error) {
	var supply *big.Int
	err := s.Call(ctx, &supply, "totalSupply")
	return supply, err
}

func (s *Staking) TotalNoOfStakers(ctx context.Context) (*big.Int, error) {
	var stakers *big.Int
	err := s.Call(ctx, &stakers, "totalNoOfStakers")
	return stakers, err
}

func (s *Staking) GetUnlockTime(ctx context.Context) (*big.Int, error) {
	var unlockTime *big.Int
	err := s.Call(ctx, &unlockTime, "getUnlockTime")
	return unlockTime, err
}

func (s *Staking) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.Call(ctx, &paused, "paused")
	return paused, err
}

func (s *Staking) Owner(ctx context.Context) (common.Address, error) {
	var owner common.Address
	err := s.Call(ctx, &owner, "owner")
	return owner, err
}

func (s *Staking) Token(ctx context.Context) (common.Address, error) {
	var token common.Address
	err := s.Call(ctx, &token, "token")
	return token, err
}

func (s *Staking) ProxiableUUID(ctx context.Context) (common.Hash, error) {
	var uuid [32]byte
	err := s.Call(ctx, &uuid, "proxiableUUID")
	return uuid, err
}

// StakedEvents returns the Staked logs of receipt.
func (s *Staking) StakedEvents(receipt *types.Receipt) ([]*StakedEvent, error) {
	fields, err := s.Events(receipt, "Staked")
	if err != nil {
		return nil, err
	}
	events := make([]*StakedEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &StakedEvent{
			User:   f["user"].(common.Address),
			Amount: f["amount"].(*big.Int),
			Time:   f["time"].(*big.Int),
		})
	}
	return events, nil
}

// WithdrawnEvents returns the Withdrawn logs of receipt.
func (s *Staking) WithdrawnEvents(receipt *types.Receipt) ([]*WithdrawnEvent, error) {
	fields, err := s.Events(receipt, "Withdrawn")
	if err != nil {
		return nil, err
	}
	events := make([]*WithdrawnEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &WithdrawnEvent{
			User:   f["user"].(common.Address),
			Amount: f["amount"].(*big.Int),
			Time:   f["time"].(*big.Int),
		})
	}
	return events, nil
}

// UnlockTimeUpdatedEvents returns the UnlockTimeUpdated logs of receipt.
func (s *Staking) UnlockTimeUpdatedEvents(receipt *types.Receipt) ([]*UnlockTimeUpdatedEvent, error) {
	fields, err := s.Events(receipt, "UnlockTimeUpdated")
	if err != nil {
		return nil, err
	}
	events := make([]*UnlockTimeUpdatedEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &UnlockTimeUpdatedEvent{
			Sender:     f["sender"].(common.Address),
			UnlockTime: f["unlockTime"].(*big.Int),
		})
	}
	return events, nil
}

// OwnershipTransferredEvents returns the OwnershipTransferred logs of receipt.
func (s *Staking) OwnershipTransferredEvents(receipt *types.Receipt) ([]*OwnershipTransferredEvent, error) {
	fields, err := s.Events(receipt, "OwnershipTransferred")
	if err != nil {
		return nil, err
	}
	events := make([]*OwnershipTransferredEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, &OwnershipTransferredEvent{
			PreviousOwner: f["previousOwner"].(common.Address),
			NewOwner:      f["newOwner"].(common.Address),
		})
	}
	return events, nil
}
