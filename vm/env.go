// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/abi"
	"github.com/ali-staking/stakedeploy/reverts"
)

// Environment an env to execute native method.
type Environment struct {
	vm          *VM
	method      *abi.Method
	caller      common.Address
	address     common.Address
	codeAddress common.Address
	value       *uint256.Int
	input       []byte
}

func (env *Environment) Caller() common.Address                  { return env.caller }
func (env *Environment) Address() common.Address                 { return env.address }
func (env *Environment) CodeAddress() common.Address             { return env.codeAddress }
func (env *Environment) Value() *uint256.Int                     { return env.value.Clone() }
func (env *Environment) Input() []byte                           { return env.input }
func (env *Environment) Method() *abi.Method                      { return env.method }
func (env *Environment) BlockContext() *BlockContext             { return &env.vm.block }
func (env *Environment) TransactionContext() *TransactionContext { return &env.vm.tx }

// IsDelegated returns whether the code runs in the storage context of another account.
func (env *Environment) IsDelegated() bool {
	return env.address != env.codeAddress
}

func (env *Environment) UseGas(gas uint64) {
	if !env.vm.gas.use(gas) {
		panic(&vmError{ErrOutOfGas})
	}
}

func (env *Environment) ParseArgs(val any) {
	if err := env.method.DecodeInput(env.input, val); err != nil {
		// malformed call data reverts without reason
		panic(&vmError{fmt.Errorf("%w: decode native input: %v", ErrExecutionReverted, err)})
	}
}

// Require reverts with reason unless cond holds.
func (env *Environment) Require(cond bool, reason string) {
	if !cond {
		env.Revert(reason)
	}
}

// Revert aborts the call and reverts its state changes.
func (env *Environment) Revert(reason string) {
	panic(&vmError{reverts.NewRequireError(reason)})
}

// GetStorage reads a storage word of the current storage context.
func (env *Environment) GetStorage(key common.Hash) common.Hash {
	env.UseGas(ethparams.SloadGasEIP2200)
	return env.vm.state.GetStorage(env.address, key)
}

// SetStorage writes a storage word of the current storage context.
func (env *Environment) SetStorage(key, value common.Hash) {
	current := env.vm.state.GetStorage(env.address, key)
	if current == (common.Hash{}) && value != (common.Hash{}) {
		env.UseGas(ethparams.SstoreSetGasEIP2200)
	} else {
		env.UseGas(ethparams.SstoreResetGasEIP2200)
	}
	env.vm.state.SetStorage(env.address, key, value)
}

// HasCode reports whether addr is a contract.
func (env *Environment) HasCode(addr common.Address) bool {
	env.UseGas(ethparams.ExtcodeSizeGasEIP150)
	return len(env.vm.state.GetCode(addr)) > 0
}

// Log emits an event from the current storage context.
func (env *Environment) Log(event *abi.Event, indexed []any, args ...any) {
	topics, err := event.Topics(indexed...)
	if err != nil {
		panic(fmt.Errorf("encode native event topics: %w", err))
	}
	data, err := event.Encode(args...)
	if err != nil {
		panic(fmt.Errorf("encode native event: %w", err))
	}
	env.UseGas(ethparams.LogGas + ethparams.LogTopicGas*uint64(len(topics)) + ethparams.LogDataGas*uint64(len(data)))

	env.vm.logs = append(env.vm.logs, &types.Log{
		Address: env.address,
		Topics:  topics,
		Data:    data,
	})
}

// Call invokes another contract with the current account as caller.
// A failure of the callee aborts the current call with the same error.
func (env *Environment) Call(to common.Address, input []byte) []byte {
	env.UseGas(ethparams.CallGasEIP150)
	ret, err := env.vm.call(env.address, to, to, new(uint256.Int), input, false)
	if err != nil {
		panic(&vmError{err})
	}
	return ret
}

// DelegateCall runs the code at codeAddr within the current storage context,
// keeping caller and value.
func (env *Environment) DelegateCall(codeAddr common.Address, input []byte) []byte {
	env.UseGas(ethparams.CallGasEIP150)
	ret, err := env.vm.call(env.caller, env.address, codeAddr, env.value, input, true)
	if err != nil {
		panic(&vmError{err})
	}
	return ret
}

// TryCall is like Call, but a failure of the callee is returned instead of
// aborting the current call. Gas used by the callee is still charged.
func (env *Environment) TryCall(to common.Address, input []byte) ([]byte, error) {
	env.UseGas(ethparams.CallGasEIP150)
	ret, err := env.vm.call(env.address, to, to, new(uint256.Int), input, false)
	if err != nil && IsOutOfGas(err) {
		panic(&vmError{err})
	}
	return ret, err
}
