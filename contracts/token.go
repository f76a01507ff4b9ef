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

// TokenDecimals is the number of decimals of the mock token.
const TokenDecimals = 18

// storage layout of an OpenZeppelin ERC20
var (
	tokenBalances    = sslot.NewMap(0)
	tokenAllowances  = sslot.NewMap(1)
	tokenTotalSupply = sslot.New(2)
	tokenName        = sslot.New(3)
	tokenSymbol      = sslot.New(4)
)

const tokenCallGas = 200

// erc20 runs the token logic in the storage context of env.
type erc20 struct {
	env *vm.Environment
}

func (t erc20) balanceOf(addr common.Address) *uint256.Int {
	return tokenBalances.ForAddress(addr).LoadUint(t.env)
}

func (t erc20) allowance(owner, spender common.Address) *uint256.Int {
	return tokenAllowances.ForAddress(owner).AsMap().ForAddress(spender).LoadUint(t.env)
}

func (t erc20) transfer(from, to common.Address, amount *uint256.Int) {
	t.env.Require(from != (common.Address{}), "ERC20: transfer from the zero address")
	t.env.Require(to != (common.Address{}), "ERC20: transfer to the zero address")

	fromBalance := t.balanceOf(from)
	t.env.Require(!fromBalance.Lt(amount), "ERC20: transfer amount exceeds balance")
	tokenBalances.ForAddress(from).SaveUint(t.env, new(uint256.Int).Sub(fromBalance, amount))
	toBalance := t.balanceOf(to)
	tokenBalances.ForAddress(to).SaveUint(t.env, toBalance.Add(toBalance, amount))

	t.env.Log(TokenMock.mustEvent("Transfer"), []any{from, to}, amount.ToBig())
}

func (t erc20) approve(owner, spender common.Address, amount *uint256.Int) {
	t.env.Require(owner != (common.Address{}), "ERC20: approve from the zero address")
	t.env.Require(spender != (common.Address{}), "ERC20: approve to the zero address")

	tokenAllowances.ForAddress(owner).AsMap().ForAddress(spender).SaveUint(t.env, amount)
	t.env.Log(TokenMock.mustEvent("Approval"), []any{owner, spender}, amount.ToBig())
}

func (t erc20) mint(to common.Address, amount *uint256.Int) {
	t.env.Require(to != (common.Address{}), "ERC20: mint to the zero address")

	supply, overflow := new(uint256.Int).AddOverflow(tokenTotalSupply.LoadUint(t.env), amount)
	t.env.Require(!overflow, "ERC20: mint amount overflows total supply")
	tokenTotalSupply.SaveUint(t.env, supply)
	balance := t.balanceOf(to)
	tokenBalances.ForAddress(to).SaveUint(t.env, balance.Add(balance, amount))

	t.env.Log(TokenMock.mustEvent("Transfer"), []any{common.Address{}, to}, amount.ToBig())
}

func tokenDefinition() *vm.Definition {
	def := vm.NewDefinition(TokenMock.Name, TokenMock.ABI).
		Constructor(func(env *vm.Environment) {
			var args struct {
				Symbol        string
				Name          string
				InitialSupply *big.Int
			}
			env.ParseArgs(&args)

			tokenSymbol.SaveString(env, args.Symbol)
			tokenName.SaveString(env, args.Name)
			erc20{env}.mint(env.Caller(), uint256.MustFromBig(args.InitialSupply))
		})

	defines := []struct {
		name string
		run  func(env *vm.Environment) []any
	}{
		{"name", func(env *vm.Environment) []any {
			return []any{tokenName.LoadString(env)}
		}},
		{"symbol", func(env *vm.Environment) []any {
			return []any{tokenSymbol.LoadString(env)}
		}},
		{"decimals", func(env *vm.Environment) []any {
			return []any{uint8(TokenDecimals)}
		}},
		{"totalSupply", func(env *vm.Environment) []any {
			return []any{tokenTotalSupply.LoadUint(env).ToBig()}
		}},
		{"balanceOf", func(env *vm.Environment) []any {
			var account common.Address
			env.ParseArgs(&account)
			return []any{erc20{env}.balanceOf(account).ToBig()}
		}},
		{"allowance", func(env *vm.Environment) []any {
			var args struct {
				Owner   common.Address
				Spender common.Address
			}
			env.ParseArgs(&args)
			return []any{erc20{env}.allowance(args.Owner, args.Spender).ToBig()}
		}},
		{"transfer", func(env *vm.Environment) []any {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			erc20{env}.transfer(env.Caller(), args.To, uint256.MustFromBig(args.Amount))
			return []any{true}
		}},
		{"approve", func(env *vm.Environment) []any {
			var args struct {
				Spender common.Address
				Amount  *big.Int
			}
			env.ParseArgs(&args)
			erc20{env}.approve(env.Caller(), args.Spender, uint256.MustFromBig(args.Amount))
			return []any{true}
		}},
		{"transferFrom", func(env *vm.Environment) []any {
			var args struct {
				From   common.Address
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			amount := uint256.MustFromBig(args.Amount)
			token := erc20{env}

			// balance moves first, so an unfunded sender fails on its balance
			// before the allowance is looked at
			token.transfer(args.From, args.To, amount)

			current := token.allowance(args.From, env.Caller())
			env.Require(!current.Lt(amount), "ERC20: transfer amount exceeds allowance")
			token.approve(args.From, env.Caller(), new(uint256.Int).Sub(current, amount))
			return []any{true}
		}},
		{"increaseAllowance", func(env *vm.Environment) []any {
			var args struct {
				Spender    common.Address
				AddedValue *big.Int
			}
			env.ParseArgs(&args)
			token := erc20{env}
			allowance, overflow := new(uint256.Int).AddOverflow(
				token.allowance(env.Caller(), args.Spender),
				uint256.MustFromBig(args.AddedValue))
			env.Require(!overflow, "ERC20: allowance overflow")
			token.approve(env.Caller(), args.Spender, allowance)
			return []any{true}
		}},
		{"decreaseAllowance", func(env *vm.Environment) []any {
			var args struct {
				Spender         common.Address
				SubtractedValue *big.Int
			}
			env.ParseArgs(&args)
			token := erc20{env}
			current := token.allowance(env.Caller(), args.Spender)
			subtracted := uint256.MustFromBig(args.SubtractedValue)
			env.Require(!current.Lt(subtracted), "ERC20: decreased allowance below zero")
			token.approve(env.Caller(), args.Spender, current.Sub(current, subtracted))
			return []any{true}
		}},
	}
	for _, d := range defines {
		def.Impl(d.name, tokenCallGas, d.run)
	}
	return def
}
