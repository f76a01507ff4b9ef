// Copyright (c) 2018 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/stackedmap"
)

type (
	balanceKey common.Address
	nonceKey   common.Address
	codeKey    common.Address
	storageKey struct {
		addr common.Address
		key  common.Hash
	}
)

// State manages the accounts state.
// All reads fall through the journal to the committed accounts.
type State struct {
	accounts map[common.Address]*Account
	sm       *stackedmap.StackedMap[any, any]
}

// New creates an empty state.
func New() *State {
	s := &State{accounts: make(map[common.Address]*Account)}
	s.resetJournal()
	return s
}

func (s *State) resetJournal() {
	s.sm = stackedmap.New(s.source)
	s.sm.Push()
}

func (s *State) source(key any) (any, bool) {
	switch k := key.(type) {
	case balanceKey:
		if acc, ok := s.accounts[common.Address(k)]; ok {
			return acc.Balance, true
		}
		return new(uint256.Int), false
	case nonceKey:
		if acc, ok := s.accounts[common.Address(k)]; ok {
			return acc.Nonce, true
		}
		return uint64(0), false
	case codeKey:
		if acc, ok := s.accounts[common.Address(k)]; ok {
			return acc.Code, true
		}
		return []byte(nil), false
	case storageKey:
		if acc, ok := s.accounts[k.addr]; ok {
			v, found := acc.Storage[k.key]
			return v, found
		}
		return common.Hash{}, false
	}
	panic("state: unknown key type")
}

// GetBalance returns the balance of the given address.
func (s *State) GetBalance(addr common.Address) *uint256.Int {
	v, _ := s.sm.Get(balanceKey(addr))
	return v.(*uint256.Int).Clone()
}

// SetBalance sets the balance of the given address.
func (s *State) SetBalance(addr common.Address, balance *uint256.Int) {
	s.sm.Put(balanceKey(addr), balance.Clone())
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(addr, new(uint256.Int).Add(s.GetBalance(addr), amount))
}

// SubBalance subtracts amount from the balance of addr.
// It returns false and leaves the balance untouched when funds are insufficient.
func (s *State) SubBalance(addr common.Address, amount *uint256.Int) bool {
	bal := s.GetBalance(addr)
	if bal.Lt(amount) {
		return false
	}
	if !amount.IsZero() {
		s.SetBalance(addr, bal.Sub(bal, amount))
	}
	return true
}

// GetNonce returns the nonce of the given address.
func (s *State) GetNonce(addr common.Address) uint64 {
	v, _ := s.sm.Get(nonceKey(addr))
	return v.(uint64)
}

// SetNonce sets the nonce of the given address.
func (s *State) SetNonce(addr common.Address, nonce uint64) {
	s.sm.Put(nonceKey(addr), nonce)
}

// GetCode returns the code of the given address.
func (s *State) GetCode(addr common.Address) []byte {
	v, _ := s.sm.Get(codeKey(addr))
	return v.([]byte)
}

// SetCode sets the code of the given address.
func (s *State) SetCode(addr common.Address, code []byte) {
	s.sm.Put(codeKey(addr), code)
}

// GetCodeHash returns the keccak256 hash of the code at addr, or the zero hash if there is none.
func (s *State) GetCodeHash(addr common.Address) common.Hash {
	code := s.GetCode(addr)
	if len(code) == 0 {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(code)
}

// Exists returns whether the account has any balance, nonce or code.
func (s *State) Exists(addr common.Address) bool {
	return !s.GetBalance(addr).IsZero() || s.GetNonce(addr) != 0 || len(s.GetCode(addr)) > 0
}

// GetStorage returns the storage value for the given address and key.
func (s *State) GetStorage(addr common.Address, key common.Hash) common.Hash {
	v, _ := s.sm.Get(storageKey{addr, key})
	return v.(common.Hash)
}

// SetStorage sets the storage value for the given address and key.
func (s *State) SetStorage(addr common.Address, key, value common.Hash) {
	s.sm.Put(storageKey{addr, key}, value)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint revision.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to the given checkpoint revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("state: cannot revert the base level")
	}
	s.sm.PopTo(revision)
}

// Commit folds all journaled writes into the committed accounts.
func (s *State) Commit() {
	s.sm.Journal(func(key, value any) bool {
		switch k := key.(type) {
		case balanceKey:
			s.account(common.Address(k)).Balance = value.(*uint256.Int)
		case nonceKey:
			s.account(common.Address(k)).Nonce = value.(uint64)
		case codeKey:
			s.account(common.Address(k)).Code = value.([]byte)
		case storageKey:
			storage := s.account(k.addr).Storage
			if v := value.(common.Hash); v == (common.Hash{}) {
				delete(storage, k.key)
			} else {
				storage[k.key] = v
			}
		}
		return true
	})
	s.resetJournal()
}

func (s *State) account(addr common.Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = newAccount()
		s.accounts[addr] = acc
	}
	return acc
}

// Copy returns a deep copy of the committed state. Uncommitted writes are not carried over.
func (s *State) Copy() *State {
	cpy := &State{accounts: make(map[common.Address]*Account, len(s.accounts))}
	for addr, acc := range s.accounts {
		cpy.accounts[addr] = acc.deepCopy()
	}
	cpy.resetJournal()
	return cpy
}

// Accounts returns the number of committed accounts.
func (s *State) Accounts() int {
	return len(s.accounts)
}
