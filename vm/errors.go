// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"errors"

	"github.com/ali-staking/stakedeploy/reverts"
)

var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrInvalidCode              = errors.New("invalid code: not a native contract")
	ErrIntrinsicGas             = errors.New("intrinsic gas too low")
)

// vmError wraps the cause of an aborted native call. It is raised by panic
// and recovered at the call boundary.
type vmError struct {
	cause error
}

// IsRevert returns whether err is a contract revert, as opposed to an out of gas or
// another execution failure.
func IsRevert(err error) bool {
	return errors.Is(err, ErrExecutionReverted) || reverts.IsRevertErr(err)
}

// RevertData returns the return data a failed execution carries.
func RevertData(err error) []byte {
	var req *reverts.ErrRequire
	if errors.As(err, &req) {
		return req.Bytes()
	}
	return nil
}
