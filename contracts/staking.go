// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/contracts/sslot"
	"github.com/ali-staking/stakedeploy/vm"
)

// MaxLockupSeconds bounds how far in the future the unlock time may be set.
const MaxLockupSeconds = 252 * 86400

const (
	stakingCallGas = 500

	initializedVersion = 1
	disabledVersion    = 255
)

var (
	stakingInitialized = sslot.New(0)
	stakingOwner       = sslot.New(1)
	stakingPaused      = sslot.New(2)
	stakingToken       = sslot.New(3)
	stakingTotalSupply = sslot.New(4)
	stakingBalances    = sslot.NewMap(5)
	stakingUnlockTime  = sslot.New(6)
	stakingStakers     = sslot.New(7)
)

func onlyOwner(env *vm.Environment) {
	env.Require(stakingOwner.LoadAddress(env) == env.Caller(), "Ownable: caller is not the owner")
}

func whenNotPaused(env *vm.Environment) {
	env.Require(!stakingPaused.LoadBool(env), "Pausable: paused")
}

func whenPaused(env *vm.Environment) {
	env.Require(stakingPaused.LoadBool(env), "Pausable: not paused")
}

func setInitialized(env *vm.Environment, version uint8) {
	stakingInitialized.SaveUint(env, uint256.NewInt(uint64(version)))
	env.Log(StakingImpl.mustEvent("Initialized"), nil, version)
}

func transferOwnership(env *vm.Environment, newOwner common.Address) {
	previous := stakingOwner.LoadAddress(env)
	stakingOwner.SaveAddress(env, newOwner)
	env.Log(StakingImpl.mustEvent("OwnershipTransferred"), []any{previous, newOwner})
}

// tokenCall invokes the staked token and checks its boolean result, the way SafeERC20 does.
func tokenCall(env *vm.Environment, method string, args ...any) {
	input, err := TokenMock.ABI.Pack(method, args...)
	if err != nil {
		panic(err)
	}
	token := stakingToken.LoadAddress(env)
	env.Require(env.HasCode(token), "Address: call to non-contract")
	ret := env.Call(token, input)
	if len(ret) > 0 {
		env.Require(new(big.Int).SetBytes(ret).Sign() != 0, "SafeERC20: ERC20 operation did not succeed")
	}
}

func stakingDefinition() *vm.Definition {
	def := vm.NewDefinition(StakingImpl.Name, StakingImpl.ABI).
		Constructor(func(env *vm.Environment) {
			// the implementation itself is never initialized, only proxies are
			setInitialized(env, disabledVersion)
		})

	defines := []struct {
		name string
		run  func(env *vm.Environment) []any
	}{
		{"postConstruct", func(env *vm.Environment) []any {
			var args struct {
				TokenAddress  common.Address
				LockupSeconds *big.Int
			}
			env.ParseArgs(&args)

			env.Require(stakingInitialized.LoadUint(env).IsZero(), "Initializable: contract is already initialized")

			transferOwnership(env, env.Caller())
			stakingPaused.SaveBool(env, false)
			stakingToken.SaveAddress(env, args.TokenAddress)

			unlockTime, overflow := new(uint256.Int).AddOverflow(
				uint256.NewInt(env.BlockContext().Time),
				uint256.MustFromBig(args.LockupSeconds))
			env.Require(!overflow, "invalid unlockTime")
			stakingUnlockTime.SaveUint(env, unlockTime)

			setInitialized(env, initializedVersion)
			return nil
		}},
		{"stake", func(env *vm.Environment) []any {
			var amount *big.Int
			env.ParseArgs(&amount)

			whenNotPaused(env)
			env.Require(amount.Sign() > 0, "cannot stake 0")

			value := uint256.MustFromBig(amount)
			user := env.Caller()
			balance := stakingBalances.ForAddress(user).LoadUint(env)
			if balance.IsZero() {
				stakers := stakingStakers.LoadUint(env)
				stakingStakers.SaveUint(env, stakers.AddUint64(stakers, 1))
			}
			stakingBalances.ForAddress(user).SaveUint(env, new(uint256.Int).Add(balance, value))
			supply := stakingTotalSupply.LoadUint(env)
			stakingTotalSupply.SaveUint(env, supply.Add(supply, value))

			tokenCall(env, "transferFrom", user, env.Address(), amount)

			env.Log(StakingImpl.mustEvent("Staked"), []any{user},
				amount, new(big.Int).SetUint64(env.BlockContext().Time))
			return nil
		}},
		{"withdraw", func(env *vm.Environment) []any {
			var amount *big.Int
			env.ParseArgs(&amount)

			env.Require(amount.Sign() > 0, "cannot withdraw 0")
			user := env.Caller()
			value := uint256.MustFromBig(amount)
			balance := stakingBalances.ForAddress(user).LoadUint(env)
			env.Require(!balance.Lt(value), "bad withdraw")
			now := env.BlockContext().Time
			env.Require(!stakingUnlockTime.LoadUint(env).GtUint64(now), "withdraw is locked")

			balance.Sub(balance, value)
			stakingBalances.ForAddress(user).SaveUint(env, balance)
			if balance.IsZero() {
				stakers := stakingStakers.LoadUint(env)
				stakingStakers.SaveUint(env, stakers.SubUint64(stakers, 1))
			}
			supply := stakingTotalSupply.LoadUint(env)
			stakingTotalSupply.SaveUint(env, supply.Sub(supply, value))

			tokenCall(env, "transfer", user, amount)

			env.Log(StakingImpl.mustEvent("Withdrawn"), []any{user},
				amount, new(big.Int).SetUint64(now))
			return nil
		}},
		{"balanceOf", func(env *vm.Environment) []any {
			var account common.Address
			env.ParseArgs(&account)
			return []any{stakingBalances.ForAddress(account).LoadUint(env).ToBig()}
		}},
		{"totalSupply", func(env *vm.Environment) []any {
			return []any{stakingTotalSupply.LoadUint(env).ToBig()}
		}},
		{"totalNoOfStakers", func(env *vm.Environment) []any {
			return []any{stakingStakers.LoadUint(env).ToBig()}
		}},
		{"getUnlockTime", func(env *vm.Environment) []any {
			return []any{stakingUnlockTime.LoadUint(env).ToBig()}
		}},
		{"updateUnlockTime", func(env *vm.Environment) []any {
			var unlockTime *big.Int
			env.ParseArgs(&unlockTime)

			onlyOwner(env)
			now := env.BlockContext().Time
			t := uint256.MustFromBig(unlockTime)
			env.Require(t.GtUint64(now) && !t.GtUint64(now+MaxLockupSeconds), "invalid unlockTime")

			stakingUnlockTime.SaveUint(env, t)
			env.Log(StakingImpl.mustEvent("UnlockTimeUpdated"), []any{env.Caller()}, unlockTime)
			return nil
		}},
		{"pause", func(env *vm.Environment) []any {
			onlyOwner(env)
			whenNotPaused(env)
			stakingPaused.SaveBool(env, true)
			env.Log(StakingImpl.mustEvent("Paused"), nil, env.Caller())
			return nil
		}},
		{"unpause", func(env *vm.Environment) []any {
			onlyOwner(env)
			whenPaused(env)
			stakingPaused.SaveBool(env, false)
			env.Log(StakingImpl.mustEvent("Unpaused"), nil, env.Caller())
			return nil
		}},
		{"paused", func(env *vm.Environment) []any {
			return []any{stakingPaused.LoadBool(env)}
		}},
		{"owner", func(env *vm.Environment) []any {
			return []any{stakingOwner.LoadAddress(env)}
		}},
		{"token", func(env *vm.Environment) []any {
			return []any{stakingToken.LoadAddress(env)}
		}},
		{"transferOwnership", func(env *vm.Environment) []any {
			var newOwner common.Address
			env.ParseArgs(&newOwner)

			onlyOwner(env)
			env.Require(newOwner != (common.Address{}), "Ownable: new owner is the zero address")
			transferOwnership(env, newOwner)
			return nil
		}},
		{"renounceOwnership", func(env *vm.Environment) []any {
			onlyOwner(env)
			transferOwnership(env, common.Address{})
			return nil
		}},
		{"upgradeTo", func(env *vm.Environment) []any {
			var newImplementation common.Address
			env.ParseArgs(&newImplementation)

			env.Require(env.IsDelegated(), "Function must be called through delegatecall")
			env.Require(implementationSlot.LoadAddress(env) == env.CodeAddress(), "Function must be called through active proxy")
			onlyOwner(env)

			env.Require(env.HasCode(newImplementation), "ERC1967: new implementation is not a contract")
			input, err := StakingImpl.ABI.Pack("proxiableUUID")
			if err != nil {
				panic(err)
			}
			ret, err := env.TryCall(newImplementation, input)
			env.Require(err == nil && len(ret) == 32, "ERC1967Upgrade: new implementation is not UUPS")
			env.Require(common.BytesToHash(ret) == ImplementationSlot, "ERC1967Upgrade: unsupported proxiableUUID")

			setImplementation(env, newImplementation)
			return nil
		}},
		{"proxiableUUID", func(env *vm.Environment) []any {
			env.Require(!env.IsDelegated(), "UUPSUpgradeable: must not be called through delegatecall")
			return []any{ImplementationSlot}
		}},
	}
	for _, d := range defines {
		def.Impl(d.name, stakingCallGas, d.run)
	}
	return def
}
