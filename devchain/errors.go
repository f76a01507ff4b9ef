// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package devchain

import (
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ali-staking/stakedeploy/reverts"
	"github.com/ali-staking/stakedeploy/vm"
)

// transaction validation errors
var (
	ErrAlreadyKnown      = errors.New("already known")
	ErrNonceTooLow       = errors.New("nonce too low")
	ErrNonceTooHigh      = errors.New("nonce too high")
	ErrGasLimit          = errors.New("exceeds block gas limit")
	ErrIntrinsicGas      = errors.New("intrinsic gas too low")
	ErrFeeCapTooLow      = errors.New("max fee per gas less than block base fee")
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")
	ErrHistoricalState   = errors.New("historical state not available")
	ErrUnknownSnapshot   = errors.New("unknown snapshot")
	ErrTimestamp         = errors.New("timestamp is lower than or equal to previous block's timestamp")
)

// revertErrorCode is the json-rpc error code geth uses for reverts.
const revertErrorCode = 3

// RevertError is a contract revert raised by a call, a gas estimation or a mined transaction.
// It carries the revert payload the way geth's json-rpc errors do.
type RevertError struct {
	reason string
	data   []byte
}

func newRevertError(err error) *RevertError {
	e := &RevertError{data: vm.RevertData(err)}
	var req *reverts.ErrRequire
	if errors.As(err, &req) {
		e.reason = req.Error()
	}
	return e
}

func (e *RevertError) Error() string {
	if e.reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.reason
}

// Reason returns the revert string, empty when the contract reverted without one.
func (e *RevertError) Reason() string { return e.reason }

// ErrorCode implements rpc.Error.
func (e *RevertError) ErrorCode() int { return revertErrorCode }

// ErrorData implements rpc.DataError.
func (e *RevertError) ErrorData() any { return hexutil.Encode(e.data) }
