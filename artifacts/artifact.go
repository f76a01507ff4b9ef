// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package artifacts resolves contract names to their ABI and creation bytecode.
package artifacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ali-staking/stakedeploy/abi"
)

// ErrNotFound is returned when a source knows no artifact for a contract.
var ErrNotFound = errors.New("artifact not found")

// Artifact is a compiled contract.
type Artifact struct {
	ContractName string
	ABI          *abi.ABI
	Bytecode     []byte
}

// CreationData returns the deployment payload: bytecode followed by the packed constructor args.
func (a *Artifact) CreationData(args ...any) ([]byte, error) {
	packed, err := a.ABI.Constructor().EncodeInput(args...)
	if err != nil {
		return nil, fmt.Errorf("pack constructor args of %s: %w", a.ContractName, err)
	}
	data := make([]byte, 0, len(a.Bytecode)+len(packed))
	data = append(data, a.Bytecode...)
	return append(data, packed...), nil
}

// BytecodeHash returns keccak256 of the creation bytecode.
func (a *Artifact) BytecodeHash() common.Hash {
	return crypto.Keccak256Hash(a.Bytecode)
}

// Source resolves artifacts by contract name.
type Source interface {
	Artifact(contract string) (*Artifact, error)
}

// Map is an in-memory source.
type Map map[string]*Artifact

// Artifact implements Source.
func (m Map) Artifact(contract string) (*Artifact, error) {
	if a, ok := m[contractName(contract)]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, contract)
}

// contractName strips the source path of a fully qualified name like
// "contracts/Staking.sol:StakingImpl".
func contractName(contract string) string {
	if i := strings.LastIndexByte(contract, ':'); i >= 0 {
		return contract[i+1:]
	}
	return contract
}

// Sources looks a contract up in each source in turn.
type Sources []Source

// Artifact implements Source.
func (s Sources) Artifact(contract string) (*Artifact, error) {
	for _, src := range s {
		a, err := src.Artifact(contract)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, contract)
}
