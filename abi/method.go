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
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MethodID is the 4-byte selector prefixing call data.
type MethodID [4]byte

func (id MethodID) String() string { return hexutil.Encode(id[:]) }

// Method is a contract method, or the constructor, of an ABI.
// The constructor has no selector: its arguments follow the creation code directly.
type Method struct {
	id     MethodID
	method *ethabi.Method
}

func newMethod(m *ethabi.Method) *Method {
	method := &Method{method: m}
	copy(method.id[:], m.ID)
	return method
}

func (m *Method) ID() MethodID { return m.id }

func (m *Method) Name() string { return m.method.Name }

func (m *Method) isConstructor() bool { return m.method.Type == ethabi.Constructor }

// Const reports whether the method is view or pure.
func (m *Method) Const() bool { return m.method.IsConstant() }

// Payable reports whether the method accepts value.
func (m *Method) Payable() bool { return m.method.IsPayable() }

// EncodeInput packs args, prefixed with the selector unless m is the constructor.
func (m *Method) EncodeInput(args ...any) ([]byte, error) {
	data, err := m.method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", m.displayName(), err)
	}
	if m.isConstructor() {
		return data, nil
	}
	return append(m.id[:], data...), nil
}

// DecodeInput unpacks call data into v. The selector must match unless m is the constructor.
func (m *Method) DecodeInput(input []byte, v any) error {
	if !m.isConstructor() {
		if !bytes.HasPrefix(input, m.id[:]) {
			return fmt.Errorf("input of %s: selector mismatch", m.displayName())
		}
		input = input[len(m.id):]
	}
	return unpack(m.method.Inputs, input, v)
}

func (m *Method) EncodeOutput(args ...any) ([]byte, error) {
	return m.method.Outputs.Pack(args...)
}

// DecodeOutput unpacks return data into v.
func (m *Method) DecodeOutput(output []byte, v any) error {
	if len(output)%32 != 0 {
		return fmt.Errorf("output of %s: length %d not a multiple of 32", m.displayName(), len(output))
	}
	return unpack(m.method.Outputs, output, v)
}

func (m *Method) displayName() string {
	if m.isConstructor() {
		return "constructor"
	}
	return m.method.Name
}

func unpack(args ethabi.Arguments, data []byte, v any) error {
	if len(args) == 0 {
		return nil
	}
	values, err := args.Unpack(data)
	if err != nil {
		return err
	}
	return args.Copy(v, values)
}

// ExtractMethodID returns the selector of call data.
func ExtractMethodID(input []byte) (id MethodID, err error) {
	if len(input) < len(id) {
		return id, errors.New("input data too short")
	}
	copy(id[:], input)
	return id, nil
}
