// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contracts

import (
	"github.com/ethereum/go-ethereum/common"
	ethparams "github.com/ethereum/go-ethereum/params"

	"github.com/ali-staking/stakedeploy/contracts/sslot"
	"github.com/ali-staking/stakedeploy/vm"
)

// ImplementationSlot is the ERC-1967 storage slot of the implementation address,
// keccak256("eip1967.proxy.implementation") - 1.
var ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

var implementationSlot = sslot.At(ImplementationSlot)

func setImplementation(env *vm.Environment, impl common.Address) {
	implementationSlot.SaveAddress(env, impl)
	env.Log(ERC1967Proxy.mustEvent("Upgraded"), []any{impl})
}

func proxyDefinition() *vm.Definition {
	return vm.NewDefinition(ERC1967Proxy.Name, ERC1967Proxy.ABI).
		Constructor(func(env *vm.Environment) {
			var args struct {
				Logic common.Address
				Data  []byte
			}
			env.ParseArgs(&args)

			env.Require(env.HasCode(args.Logic), "ERC1967: new implementation is not a contract")
			setImplementation(env, args.Logic)
			if len(args.Data) > 0 {
				env.DelegateCall(args.Logic, args.Data)
			}
		}).
		Fallback(func(env *vm.Environment) []byte {
			env.UseGas(ethparams.WarmStorageReadCostEIP2929)
			return env.DelegateCall(implementationSlot.LoadAddress(env), env.Input())
		})
}
