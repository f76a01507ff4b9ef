// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package contracts implements the token, staking and proxy contracts as native contracts.
package contracts

import (
	"embed"
	"fmt"
	"sync"

	"github.com/ali-staking/stakedeploy/abi"
	"github.com/ali-staking/stakedeploy/artifacts"
	"github.com/ali-staking/stakedeploy/vm"
)

//go:embed compiled/*.abi
var compiled embed.FS

// contract couples a contract name with its ABI.
type contract struct {
	Name string
	ABI  *abi.ABI
}

func mustLoadContract(name string) *contract {
	data, err := compiled.ReadFile("compiled/" + name + ".abi")
	if err != nil {
		panic(fmt.Errorf("load ABI for '%s': %w", name, err))
	}
	abi, err := abi.New(data)
	if err != nil {
		panic(fmt.Errorf("parse ABI for '%s': %w", name, err))
	}
	return &contract{name, abi}
}

// Bytecode returns the creation code header of the contract.
func (c *contract) Bytecode() []byte {
	return vm.NativeCode(c.Name)
}

func (c *contract) mustEvent(name string) *abi.Event {
	ev, found := c.ABI.EventByName(name)
	if !found {
		panic(fmt.Sprintf("event %s not found in %s ABI", name, c.Name))
	}
	return ev
}

// Artifact returns the artifact the contract is deployed from.
func (c *contract) Artifact() *artifacts.Artifact {
	return &artifacts.Artifact{
		ContractName: c.Name,
		ABI:          c.ABI,
		Bytecode:     c.Bytecode(),
	}
}

// Contracts.
var (
	TokenMock    = mustLoadContract("TokenMock")
	StakingImpl  = mustLoadContract("StakingImpl")
	ERC1967Proxy = mustLoadContract("ERC1967Proxy")
)

// Registry returns the runtime registry of every native contract.
var Registry = sync.OnceValue(func() *vm.Registry {
	return vm.NewRegistry(
		tokenDefinition(),
		stakingDefinition(),
		proxyDefinition(),
	)
})

// Artifacts returns an artifact source serving every native contract.
func Artifacts() artifacts.Source {
	return artifacts.Map{
		TokenMock.Name:    TokenMock.Artifact(),
		StakingImpl.Name:  StakingImpl.Artifact(),
		ERC1967Proxy.Name: ERC1967Proxy.Artifact(),
	}
}

