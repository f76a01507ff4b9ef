// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Storage is the word storage of the account a slot lives in.
type Storage interface {
	GetStorage(key common.Hash) common.Hash
	SetStorage(key, value common.Hash)
}

// StorageSlot entry to access account storage.
// Slots and mappings follow the Solidity storage layout, strings are stored as
// a length word followed by data words at keccak256(position).
type StorageSlot struct {
	position common.Hash
}

// New create a slot instance at the given sequential slot number.
func New(slot uint64) *StorageSlot {
	return &StorageSlot{common.BigToHash(new(big.Int).SetUint64(slot))}
}

// At create a slot instance at an arbitrary position, e.g. an ERC-1967 slot.
func At(position common.Hash) *StorageSlot {
	return &StorageSlot{position}
}

// Position returns the storage key of the slot.
func (ss *StorageSlot) Position() common.Hash {
	return ss.position
}

// Load load value as machine word.
func (ss *StorageSlot) Load(s Storage) common.Hash {
	return s.GetStorage(ss.position)
}

// Save save value as machine word.
func (ss *StorageSlot) Save(s Storage, val common.Hash) {
	s.SetStorage(ss.position, val)
}

// LoadUint loads the word as an unsigned integer.
func (ss *StorageSlot) LoadUint(s Storage) *uint256.Int {
	w := ss.Load(s)
	return new(uint256.Int).SetBytes32(w[:])
}

// SaveUint saves an unsigned integer.
func (ss *StorageSlot) SaveUint(s Storage, v *uint256.Int) {
	ss.Save(s, common.Hash(v.Bytes32()))
}

// LoadAddress loads the word as an address.
func (ss *StorageSlot) LoadAddress(s Storage) common.Address {
	return common.BytesToAddress(ss.Load(s).Bytes())
}

// SaveAddress saves an address.
func (ss *StorageSlot) SaveAddress(s Storage, addr common.Address) {
	ss.Save(s, common.BytesToHash(addr.Bytes()))
}

// LoadBool loads the word as a bool.
func (ss *StorageSlot) LoadBool(s Storage) bool {
	return ss.Load(s) != (common.Hash{})
}

// SaveBool saves a bool.
func (ss *StorageSlot) SaveBool(s Storage, b bool) {
	var w common.Hash
	if b {
		w[common.HashLength-1] = 1
	}
	ss.Save(s, w)
}

// LoadString loads a string.
func (ss *StorageSlot) LoadString(s Storage) string {
	n := ss.LoadUint(s).Uint64()
	data := make([]byte, 0, n)
	base := new(uint256.Int).SetBytes(crypto.Keccak256(ss.position[:]))
	for i := uint64(0); uint64(len(data)) < n; i++ {
		pos := new(uint256.Int).AddUint64(base, i)
		w := s.GetStorage(common.Hash(pos.Bytes32()))
		data = append(data, w[:]...)
	}
	return string(data[:n])
}

// SaveString saves a string.
func (ss *StorageSlot) SaveString(s Storage, str string) {
	data := []byte(str)
	ss.SaveUint(s, uint256.NewInt(uint64(len(data))))
	base := new(uint256.Int).SetBytes(crypto.Keccak256(ss.position[:]))
	for i := uint64(0); i*32 < uint64(len(data)); i++ {
		var w common.Hash
		copy(w[:], data[i*32:])
		pos := new(uint256.Int).AddUint64(base, i)
		s.SetStorage(common.Hash(pos.Bytes32()), w)
	}
}

// Map provides map access to at 'slot'.
type Map StorageSlot

// NewMap create a Map instance.
func NewMap(slot uint64) *Map {
	return (*Map)(New(slot))
}

// ForKey create a new StorageSlot for accessing value for given key.
// The position is keccak256(key . slot), as Solidity lays out mappings.
func (m *Map) ForKey(key common.Hash) *StorageSlot {
	return &StorageSlot{crypto.Keccak256Hash(key[:], m.position[:])}
}

// ForAddress is ForKey with an address key.
func (m *Map) ForAddress(addr common.Address) *StorageSlot {
	return m.ForKey(common.BytesToHash(addr.Bytes()))
}

// AsMap treats the slot as the root of a nested mapping.
func (ss *StorageSlot) AsMap() *Map {
	return (*Map)(ss)
}
