// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"fmt"
	"slices"

	"github.com/ali-staking/stakedeploy/abi"
)

// nativeMethod describes a native call.
type nativeMethod struct {
	method *abi.Method
	gas    uint64
	run    func(env *Environment) []any
}

// Definition binds the ABI of a contract to its native implementation.
type Definition struct {
	name        string
	abi         *abi.ABI
	constructor func(env *Environment)
	fallback    func(env *Environment) []byte
	methods     map[abi.MethodID]*nativeMethod
}

// NewDefinition creates an empty definition for the named contract.
func NewDefinition(name string, contractABI *abi.ABI) *Definition {
	return &Definition{
		name:    name,
		abi:     contractABI,
		methods: make(map[abi.MethodID]*nativeMethod),
	}
}

// Name returns the contract name.
func (d *Definition) Name() string { return d.name }

// ABI returns the contract ABI.
func (d *Definition) ABI() *abi.ABI { return d.abi }

// Code returns the code header of the contract.
func (d *Definition) Code() []byte { return NativeCode(d.name) }

// Impl binds a method of the ABI to its implementation.
// gas is charged before run is invoked.
func (d *Definition) Impl(name string, gas uint64, run func(env *Environment) []any) *Definition {
	method, found := d.abi.MethodByName(name)
	if !found {
		panic(fmt.Sprintf("vm: method %s not found in %s ABI", name, d.name))
	}
	if _, dup := d.methods[method.ID()]; dup {
		panic(fmt.Sprintf("vm: method %s of %s already implemented", name, d.name))
	}
	d.methods[method.ID()] = &nativeMethod{method, gas, run}
	return d
}

// Constructor sets the code run on contract creation.
func (d *Definition) Constructor(run func(env *Environment)) *Definition {
	d.constructor = run
	return d
}

// Fallback sets the code handling every call. When set, method dispatch is skipped.
func (d *Definition) Fallback(run func(env *Environment) []byte) *Definition {
	d.fallback = run
	return d
}

// Registry holds the native contracts known to a chain.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates a registry from the given definitions.
func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, def := range defs {
		if _, dup := r.defs[def.name]; dup {
			panic("vm: duplicated native contract " + def.name)
		}
		r.defs[def.name] = def
	}
	return r
}

// Lookup returns the definition of the named contract.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the sorted contract names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
