// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BlockContext block context.
type BlockContext struct {
	Number   uint64
	Time     uint64
	GasLimit uint64
	Coinbase common.Address
	ChainID  *big.Int
}

// TransactionContext transaction context.
type TransactionContext struct {
	Hash     common.Hash
	Origin   common.Address
	GasPrice *big.Int
}

// Message is the top-level call or creation executed by the VM.
type Message struct {
	From  common.Address
	To    *common.Address // nil means contract creation
	Nonce uint64
	Value *uint256.Int
	Data  []byte
	Gas   uint64
}
