// Copyright (c) 2025 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts encodes contract revert reasons and recovers them from call and transaction errors.
package reverts

import (
	"encoding/binary"
	"errors"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// errorSelector is the 4-byte selector of Error(string).
var errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

const executionReverted = "execution reverted"

type ErrRequire struct {
	message string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

func (e *ErrRequire) Error() string {
	return e.message
}

// Bytes returns the Error(string) payload of the revert.
func (e *ErrRequire) Bytes() []byte {
	if e == nil {
		return nil
	}

	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, errorSelector...)

	// Offset is always 0x20 (32) after the selector
	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRequire
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}

// dataError is implemented by json-rpc errors carrying revert data.
type dataError interface {
	error
	ErrorData() any
}

// Decode unpacks an Error(string) or Panic(uint256) payload.
func Decode(data []byte) (string, error) {
	return ethabi.UnpackRevert(data)
}

// Reason extracts the revert reason carried by err.
// It understands in-process require errors, json-rpc data errors and plain
// "execution reverted: <reason>" messages.
func Reason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var req *ErrRequire
	if errors.As(err, &req) && req != nil {
		return req.message, true
	}

	var de dataError
	if errors.As(err, &de) {
		var payload []byte
		switch data := de.ErrorData().(type) {
		case string:
			payload, _ = hexutil.Decode(data)
		case []byte:
			payload = data
		case hexutil.Bytes:
			payload = data
		}
		if len(payload) > 0 {
			if reason, err := Decode(payload); err == nil {
				return reason, true
			}
		}
	}

	msg := err.Error()
	if i := strings.Index(msg, executionReverted+": "); i >= 0 {
		return msg[i+len(executionReverted)+2:], true
	}
	return "", false
}
