// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/state"
)

const maxCallDepth = 1024

type gasMeter struct {
	limit uint64
	used  uint64
}

func (g *gasMeter) use(gas uint64) bool {
	if g.limit-g.used < gas {
		g.used = g.limit
		return false
	}
	g.used += gas
	return true
}

// Result is the outcome of an applied message.
type Result struct {
	ReturnData      []byte
	GasUsed         uint64
	Logs            []*types.Log
	ContractAddress common.Address
	Err             error
}

// Failed returns whether the execution failed.
func (r *Result) Failed() bool { return r.Err != nil }

// VM executes messages against native contracts.
// A VM instance serves a single message and is not safe for concurrent use.
type VM struct {
	registry *Registry
	state    *state.State
	block    BlockContext
	tx       TransactionContext
	gas      *gasMeter
	logs     []*types.Log
	depth    int
}

// New creates a VM.
func New(registry *Registry, state *state.State, block BlockContext, tx TransactionContext) *VM {
	return &VM{
		registry: registry,
		state:    state,
		block:    block,
		tx:       tx,
	}
}

// IntrinsicGas computes the gas charged before any code runs.
func IntrinsicGas(data []byte, creation bool) uint64 {
	gas := ethparams.TxGas
	if creation {
		gas = ethparams.TxGasContractCreation
	}
	for _, b := range data {
		if b == 0 {
			gas += ethparams.TxDataZeroGas
		} else {
			gas += ethparams.TxDataNonZeroGasEIP2028
		}
	}
	return gas
}

// Apply executes msg. State changes of a failed execution are reverted,
// the caller is responsible for nonce and fee accounting.
func (vm *VM) Apply(msg *Message) *Result {
	intrinsic := IntrinsicGas(msg.Data, msg.To == nil)
	if msg.Gas < intrinsic {
		return &Result{Err: ErrIntrinsicGas}
	}
	vm.gas = &gasMeter{limit: msg.Gas, used: intrinsic}
	vm.logs = nil

	value := msg.Value
	if value == nil {
		value = new(uint256.Int)
	}

	res := &Result{}
	if msg.To == nil {
		res.ContractAddress = crypto.CreateAddress(msg.From, msg.Nonce)
		res.ReturnData, res.Err = vm.create(msg.From, res.ContractAddress, value, msg.Data)
	} else {
		res.ReturnData, res.Err = vm.call(msg.From, *msg.To, *msg.To, value, msg.Data, false)
	}
	res.GasUsed = vm.gas.used
	if res.Err == nil {
		res.Logs = vm.logs
	}
	return res
}

func (vm *VM) resolve(code []byte) (*Definition, error) {
	name, ok := ParseNativeCode(code)
	if !ok {
		return nil, ErrInvalidCode
	}
	def, ok := vm.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown contract %s", ErrInvalidCode, name)
	}
	return def, nil
}

func (vm *VM) call(caller, addr, codeAddr common.Address, value *uint256.Int, input []byte, delegate bool) (ret []byte, err error) {
	if vm.depth >= maxCallDepth {
		return nil, ErrDepth
	}
	checkpoint := vm.state.NewCheckpoint()
	nlogs := len(vm.logs)
	defer func() {
		if err != nil {
			vm.state.RevertTo(checkpoint)
			vm.logs = vm.logs[:nlogs]
		}
	}()

	if !delegate && !value.IsZero() {
		if !vm.state.SubBalance(caller, value) {
			return nil, ErrInsufficientBalance
		}
		vm.state.AddBalance(addr, value)
	}

	code := vm.state.GetCode(codeAddr)
	if len(code) == 0 {
		// plain transfer
		return nil, nil
	}
	def, err := vm.resolve(code)
	if err != nil {
		return nil, err
	}

	vm.depth++
	defer func() { vm.depth-- }()

	return vm.run(&Environment{
		vm:          vm,
		caller:      caller,
		address:     addr,
		codeAddress: codeAddr,
		value:       value,
		input:       input,
	}, def)
}

func (vm *VM) run(env *Environment, def *Definition) (ret []byte, err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				ret, err = nil, rec.cause
			} else {
				panic(e)
			}
		}
	}()

	if def.fallback != nil {
		return def.fallback(env), nil
	}

	method, err := def.abi.MethodByInput(env.input)
	if err != nil {
		return nil, ErrExecutionReverted
	}
	nm, ok := def.methods[method.ID()]
	if !ok {
		return nil, ErrExecutionReverted
	}
	if !env.value.IsZero() && !method.Payable() {
		return nil, ErrExecutionReverted
	}

	env.method = method
	env.UseGas(nm.gas)
	output := nm.run(env)
	data, err := method.EncodeOutput(output...)
	if err != nil {
		panic(fmt.Errorf("encode native output of %s.%s: %w", def.name, method.Name(), err))
	}
	return data, nil
}

func (vm *VM) create(caller, addr common.Address, value *uint256.Int, data []byte) (ret []byte, err error) {
	if len(data) < NativeCodeSize {
		return nil, ErrInvalidCode
	}
	code := data[:NativeCodeSize]
	def, err := vm.resolve(code)
	if err != nil {
		return nil, err
	}
	if vm.state.GetNonce(addr) != 0 || len(vm.state.GetCode(addr)) != 0 {
		return nil, ErrContractAddressCollision
	}

	checkpoint := vm.state.NewCheckpoint()
	nlogs := len(vm.logs)
	defer func() {
		if err != nil {
			vm.state.RevertTo(checkpoint)
			vm.logs = vm.logs[:nlogs]
		}
	}()

	vm.state.SetNonce(addr, 1)
	if !value.IsZero() {
		if !vm.state.SubBalance(caller, value) {
			return nil, ErrInsufficientBalance
		}
		vm.state.AddBalance(addr, value)
	}

	vm.depth++
	defer func() { vm.depth-- }()

	env := &Environment{
		vm:          vm,
		method:      def.abi.Constructor(),
		caller:      caller,
		address:     addr,
		codeAddress: addr,
		value:       value,
		input:       data[NativeCodeSize:],
	}
	if err := vm.construct(env, def); err != nil {
		return nil, err
	}
	vm.state.SetCode(addr, code)
	return nil, nil
}

func (vm *VM) construct(env *Environment, def *Definition) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				err = rec.cause
			} else {
				panic(e)
			}
		}
	}()
	env.UseGas(ethparams.CreateGas + ethparams.CreateDataGas*NativeCodeSize)
	if def.constructor != nil {
		def.constructor(env)
	}
	return nil
}

// IsOutOfGas returns whether err reports gas exhaustion.
func IsOutOfGas(err error) bool {
	return errors.Is(err, ErrOutOfGas)
}
