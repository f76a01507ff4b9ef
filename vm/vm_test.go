// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-staking/stakedeploy/abi"
	"github.com/ali-staking/stakedeploy/reverts"
	"github.com/ali-staking/stakedeploy/state"
)

const counterABI = `[
	{"type":"constructor","inputs":[{"name":"start","type":"uint256"}]},
	{"type":"function","name":"get","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"inc","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"incAndFail","stateMutability":"nonpayable","inputs":[{"name":"reason","type":"string"}],"outputs":[]},
	{"type":"function","name":"forward","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"delegate","stateMutability":"nonpayable","inputs":[{"name":"target","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"event","name":"Incremented","inputs":[{"name":"by","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var (
	counter     = abi.MustNew([]byte(counterABI))
	counterSlot = common.Hash{}
)

func counterDefinition() *Definition {
	inc := func(env *Environment) {
		v := new(big.Int).SetBytes(env.GetStorage(counterSlot).Bytes())
		v.Add(v, common.Big1)
		env.SetStorage(counterSlot, common.BigToHash(v))
		ev, _ := counter.EventByName("Incremented")
		env.Log(ev, []any{env.Caller()}, v)
	}
	return NewDefinition("Counter", counter).
		Constructor(func(env *Environment) {
			var start *big.Int
			env.ParseArgs(&start)
			env.SetStorage(counterSlot, common.BigToHash(start))
		}).
		Impl("get", 100, func(env *Environment) []any {
			return []any{new(big.Int).SetBytes(env.GetStorage(counterSlot).Bytes())}
		}).
		Impl("inc", 100, func(env *Environment) []any {
			inc(env)
			return nil
		}).
		Impl("incAndFail", 100, func(env *Environment) []any {
			var reason string
			env.ParseArgs(&reason)
			inc(env)
			env.Revert(reason)
			return nil
		}).
		Impl("forward", 100, func(env *Environment) []any {
			var args struct {
				Target common.Address
				Data   []byte
			}
			env.ParseArgs(&args)
			return []any{env.Call(args.Target, args.Data)}
		}).
		Impl("delegate", 100, func(env *Environment) []any {
			var args struct {
				Target common.Address
				Data   []byte
			}
			env.ParseArgs(&args)
			return []any{env.DelegateCall(args.Target, args.Data)}
		}).
		Impl("burn", 100, func(env *Environment) []any {
			for {
				env.UseGas(1000)
			}
		}).
		Impl("deposit", 100, func(env *Environment) []any {
			return nil
		})
}

type testVM struct {
	t        *testing.T
	registry *Registry
	state    *state.State
}

func newTestVM(t *testing.T) *testVM {
	return &testVM{t, NewRegistry(counterDefinition()), state.New()}
}

func (tv *testVM) apply(from common.Address, to *common.Address, data []byte, value uint64) *Result {
	nonce := tv.state.GetNonce(from)
	vm := New(tv.registry, tv.state, BlockContext{Number: 1, Time: 1000, GasLimit: 30_000_000, ChainID: big.NewInt(1)}, TransactionContext{Origin: from})
	res := vm.Apply(&Message{From: from, To: to, Nonce: nonce, Value: uint256.NewInt(value), Data: data, Gas: 1_000_000})
	tv.state.SetNonce(from, nonce+1)
	tv.state.Commit()
	return res
}

func (tv *testVM) deploy(from common.Address, start int64) common.Address {
	input, err := counter.Constructor().EncodeInput(big.NewInt(start))
	require.NoError(tv.t, err)
	res := tv.apply(from, nil, append(NativeCode("Counter"), input...), 0)
	require.NoError(tv.t, res.Err)
	return res.ContractAddress
}

func (tv *testVM) get(addr common.Address) int64 {
	data, err := counter.Pack("get")
	require.NoError(tv.t, err)
	res := tv.apply(common.Address{}, &addr, data, 0)
	require.NoError(tv.t, res.Err)
	var v *big.Int
	m, _ := counter.MethodByName("get")
	require.NoError(tv.t, m.DecodeOutput(res.ReturnData, &v))
	return v.Int64()
}

func mustPack(t *testing.T, name string, args ...any) []byte {
	data, err := counter.Pack(name, args...)
	require.NoError(t, err)
	return data
}

var alice = common.HexToAddress("0xa11ce")

func TestCreateAndCall(t *testing.T) {
	tv := newTestVM(t)
	addr := tv.deploy(alice, 5)

	assert.Equal(t, NativeCode("Counter"), tv.state.GetCode(addr))
	assert.Equal(t, uint64(1), tv.state.GetNonce(addr))
	assert.Equal(t, int64(5), tv.get(addr))

	res := tv.apply(alice, &addr, mustPack(t, "inc"), 0)
	require.NoError(t, res.Err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, addr, res.Logs[0].Address)
	assert.Equal(t, common.BytesToHash(alice.Bytes()), res.Logs[0].Topics[1])
	assert.Greater(t, res.GasUsed, IntrinsicGas(mustPack(t, "inc"), false))
	assert.Equal(t, int64(6), tv.get(addr))
}

func TestRevertRollsBack(t *testing.T) {
	tv := newTestVM(t)
	addr := tv.deploy(alice, 0)

	res := tv.apply(alice, &addr, mustPack(t, "incAndFail", "nope"), 0)
	require.Error(t, res.Err)
	assert.True(t, IsRevert(res.Err))
	assert.Empty(t, res.Logs)
	reason, ok := reverts.Reason(res.Err)
	assert.True(t, ok)
	assert.Equal(t, "nope", reason)
	assert.Equal(t, reverts.NewRequireError("nope").Bytes(), RevertData(res.Err))
	assert.Equal(t, int64(0), tv.get(addr))
}

func TestNestedCalls(t *testing.T) {
	tv := newTestVM(t)
	a := tv.deploy(alice, 0)
	b := tv.deploy(alice, 100)

	// a calls b: b's storage changes
	res := tv.apply(alice, &a, mustPack(t, "forward", b, mustPack(t, "inc")), 0)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(0), tv.get(a))
	assert.Equal(t, int64(101), tv.get(b))
	require.Len(t, res.Logs, 1)
	assert.Equal(t, b, res.Logs[0].Address)
	assert.Equal(t, common.BytesToHash(a.Bytes()), res.Logs[0].Topics[1])

	// a delegates to b: a's storage changes, caller is kept
	res = tv.apply(alice, &a, mustPack(t, "delegate", b, mustPack(t, "inc")), 0)
	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), tv.get(a))
	assert.Equal(t, int64(101), tv.get(b))
	require.Len(t, res.Logs, 1)
	assert.Equal(t, a, res.Logs[0].Address)
	assert.Equal(t, common.BytesToHash(alice.Bytes()), res.Logs[0].Topics[1])

	// reverts bubble up with their reason
	res = tv.apply(alice, &a, mustPack(t, "forward", b, mustPack(t, "incAndFail", "inner")), 0)
	reason, ok := reverts.Reason(res.Err)
	assert.True(t, ok)
	assert.Equal(t, "inner", reason)
	assert.Equal(t, int64(101), tv.get(b))
}

func TestOutOfGas(t *testing.T) {
	tv := newTestVM(t)
	addr := tv.deploy(alice, 0)

	res := tv.apply(alice, &addr, mustPack(t, "burn"), 0)
	assert.True(t, IsOutOfGas(res.Err))
	assert.False(t, IsRevert(res.Err))
	assert.Equal(t, uint64(1_000_000), res.GasUsed)
}

func TestIntrinsicGasTooLow(t *testing.T) {
	tv := newTestVM(t)
	vm := New(tv.registry, tv.state, BlockContext{}, TransactionContext{})
	res := vm.Apply(&Message{From: alice, To: &alice, Gas: 20_000})
	assert.ErrorIs(t, res.Err, ErrIntrinsicGas)
}

func TestValue(t *testing.T) {
	tv := newTestVM(t)
	addr := tv.deploy(alice, 0)
	tv.state.SetBalance(alice, uint256.NewInt(1000))
	tv.state.Commit()

	res := tv.apply(alice, &addr, mustPack(t, "deposit"), 10)
	require.NoError(t, res.Err)
	assert.Equal(t, uint64(10), tv.state.GetBalance(addr).Uint64())

	// non payable
	res = tv.apply(alice, &addr, mustPack(t, "inc"), 10)
	assert.ErrorIs(t, res.Err, ErrExecutionReverted)
	assert.Equal(t, uint64(990), tv.state.GetBalance(alice).Uint64())

	res = tv.apply(alice, &addr, mustPack(t, "deposit"), 5000)
	assert.ErrorIs(t, res.Err, ErrInsufficientBalance)

	// plain transfer to an account without code
	bob := common.HexToAddress("0xb0b")
	res = tv.apply(alice, &bob, nil, 90)
	require.NoError(t, res.Err)
	assert.Equal(t, uint64(90), tv.state.GetBalance(bob).Uint64())
}

func TestCreateErrors(t *testing.T) {
	tv := newTestVM(t)

	res := tv.apply(alice, nil, []byte{0x60, 0x80}, 0)
	assert.ErrorIs(t, res.Err, ErrInvalidCode)

	res = tv.apply(alice, nil, NativeCode("Unknown"), 0)
	assert.ErrorIs(t, res.Err, ErrInvalidCode)

	// constructor args missing
	res = tv.apply(alice, nil, NativeCode("Counter"), 0)
	assert.ErrorIs(t, res.Err, ErrExecutionReverted)
	assert.Empty(t, tv.state.GetCode(res.ContractAddress))
}

func TestUnknownMethod(t *testing.T) {
	tv := newTestVM(t)
	addr := tv.deploy(alice, 0)

	res := tv.apply(alice, &addr, []byte{1, 2, 3, 4}, 0)
	assert.ErrorIs(t, res.Err, ErrExecutionReverted)
	res = tv.apply(alice, &addr, []byte{1}, 0)
	assert.ErrorIs(t, res.Err, ErrExecutionReverted)
}

func TestNativeCode(t *testing.T) {
	code := NativeCode("TokenMock")
	assert.Len(t, code, NativeCodeSize)
	name, ok := ParseNativeCode(code)
	assert.True(t, ok)
	assert.Equal(t, "TokenMock", name)

	_, ok = ParseNativeCode([]byte{0x60, 0x80, 0x60, 0x40})
	assert.False(t, ok)
	_, ok = ParseNativeCode(make([]byte, NativeCodeSize))
	assert.False(t, ok)

	assert.Panics(t, func() { NativeCode("") })
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(counterDefinition(), NewDefinition("Empty", counter))
	assert.Equal(t, []string{"Counter", "Empty"}, r.Names())
	_, ok := r.Lookup("Counter")
	assert.True(t, ok)
	assert.Panics(t, func() { NewRegistry(counterDefinition(), counterDefinition()) })
	assert.Panics(t, func() { NewDefinition("X", counter).Impl("missing", 0, nil) })

	empty := NewDefinition("Empty", counter)
	assert.Equal(t, "Empty", empty.Name())
	assert.Same(t, counter, empty.ABI())
	assert.Equal(t, NativeCode("Empty"), empty.Code())
}
