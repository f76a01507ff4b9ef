// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package artifacts

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterArtifact = `{
  "_format": "hh-sol-artifact-1",
  "contractName": "Counter",
  "sourceName": "contracts/Counter.sol",
  "abi": [
    {"type":"constructor","inputs":[{"name":"start","type":"uint256"}]},
    {"type":"function","name":"count","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
  ],
  "bytecode": "0x6080604052"
}`

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts", "Counter.sol", "Counter.json"), counterArtifact)
	writeFile(t, filepath.Join(root, "contracts", "Counter.sol", "Counter.dbg.json"), `{"_format":"hh-sol-dbg-1"}`)
	writeFile(t, filepath.Join(root, "build-info", "abc.json"), `{}`)

	dir, err := NewDir(root)
	require.NoError(t, err)

	a, err := dir.Artifact("Counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter", a.ContractName)
	assert.Equal(t, common.FromHex("0x6080604052"), a.Bytecode)
	assert.Equal(t, crypto.Keccak256Hash(a.Bytecode), a.BytecodeHash())

	// fully qualified names resolve to the same artifact, served from cache
	same, err := dir.Artifact("contracts/Counter.sol:Counter")
	require.NoError(t, err)
	assert.Same(t, a, same)

	data, err := a.CreationData(big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, len(a.Bytecode)+32, len(data))
	assert.Equal(t, a.Bytecode, data[:len(a.Bytecode)])

	_, err = a.CreationData()
	assert.Error(t, err)

	_, err = dir.Artifact("Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewDirErrors(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "")
	_, err = NewDir(file)
	assert.Error(t, err)
}

func TestMap(t *testing.T) {
	m := Map{"Counter": &Artifact{ContractName: "Counter"}}
	a, err := m.Artifact("src/Counter.sol:Counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter", a.ContractName)

	_, err = m.Artifact("Other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSources(t *testing.T) {
	first := Map{"Counter": &Artifact{ContractName: "Counter", Bytecode: []byte{1}}}
	second := Map{
		"Counter": &Artifact{ContractName: "Counter", Bytecode: []byte{2}},
		"Token":   &Artifact{ContractName: "Token"},
	}
	sources := Sources{first, second}

	a, err := sources.Artifact("Counter")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, a.Bytecode, "earlier sources win")

	a, err = sources.Artifact("Token")
	require.NoError(t, err)
	assert.Equal(t, "Token", a.ContractName)

	_, err = sources.Artifact("Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
