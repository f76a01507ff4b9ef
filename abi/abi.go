// Copyright (c) 2018 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"
	"errors"
	"fmt"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ABI holds information about methods and events of contract.
type ABI struct {
	raw          []byte
	constructor  *Method
	nameToMethod map[string]*Method
	nameToEvent  map[string]*Event
	methods      map[MethodID]*Method
	events       map[common.Hash]*Event
}

// New create an ABI instance.
func New(data []byte) (*ABI, error) {
	parsed, err := ethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	ctor := parsed.Constructor
	abi := &ABI{
		raw:          bytes.Clone(data),
		constructor:  newMethod(&ctor),
		nameToMethod: make(map[string]*Method),
		nameToEvent:  make(map[string]*Event),
		methods:      make(map[MethodID]*Method),
		events:       make(map[common.Hash]*Event),
	}

	for name, m := range parsed.Methods {
		method := newMethod(&m)
		abi.methods[method.ID()] = method
		abi.nameToMethod[name] = method
	}
	for name, e := range parsed.Events {
		event := newEvent(&e)
		abi.events[event.ID()] = event
		abi.nameToEvent[name] = event
	}
	return abi, nil
}

// MustNew is like New but panics on malformed ABI.
func MustNew(data []byte) *ABI {
	abi, err := New(data)
	if err != nil {
		panic(fmt.Errorf("parse abi: %w", err))
	}
	return abi
}

// JSON returns the raw json the ABI was built from.
func (a *ABI) JSON() []byte {
	return a.raw
}

// Constructor returns the constructor method if any.
func (a *ABI) Constructor() *Method {
	return a.constructor
}

// MethodByInput find the method for given input.
// If the input shorter than MethodID, or method not found, an error returned.
func (a *ABI) MethodByInput(input []byte) (*Method, error) {
	id, err := ExtractMethodID(input)
	if err != nil {
		return nil, err
	}
	m, found := a.methods[id]
	if !found {
		return nil, errors.New("method not found")
	}
	return m, nil
}

// MethodByName find method for the given method name.
func (a *ABI) MethodByName(name string) (*Method, bool) {
	m, found := a.nameToMethod[name]
	return m, found
}

// MethodByID returns method for given method id.
func (a *ABI) MethodByID(id MethodID) (*Method, bool) {
	m, found := a.methods[id]
	return m, found
}

// Methods returns all methods, in no particular order.
func (a *ABI) Methods() []*Method {
	methods := make([]*Method, 0, len(a.methods))
	for _, m := range a.methods {
		methods = append(methods, m)
	}
	return methods
}

// EventByName find event for the given event name.
func (a *ABI) EventByName(name string) (*Event, bool) {
	e, found := a.nameToEvent[name]
	return e, found
}

// EventByID returns the event for the given event id.
func (a *ABI) EventByID(id common.Hash) (*Event, bool) {
	e, found := a.events[id]
	return e, found
}

// Pack encodes the input of the named method, prefixed with its id.
func (a *ABI) Pack(name string, args ...any) ([]byte, error) {
	m, found := a.nameToMethod[name]
	if !found {
		return nil, fmt.Errorf("method '%s' not found", name)
	}
	return m.EncodeInput(args...)
}
