// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package artifacts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"

	"github.com/ali-staking/stakedeploy/abi"
)

var logger = log.New("pkg", "artifacts")

const dirCacheSize = 64

// hardhatArtifact is the json layout hardhat writes under artifacts/.
type hardhatArtifact struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Dir loads hardhat artifacts from a directory tree.
type Dir struct {
	root  string
	cache *lru.Cache

	once  sync.Once
	index map[string]string // contract name => file
	err   error
}

// NewDir creates a source reading artifacts under root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifacts: %s is not a directory", root)
	}
	cache, err := lru.New(dirCacheSize)
	if err != nil {
		return nil, err
	}
	return &Dir{root: root, cache: cache}, nil
}

func (d *Dir) buildIndex() {
	d.index = make(map[string]string)
	d.err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".dbg.json") {
			return nil
		}
		contract := strings.TrimSuffix(name, ".json")
		if prev, dup := d.index[contract]; dup {
			logger.Warn("duplicated artifact name, keeping the first", "contract", contract, "kept", prev, "ignored", path)
			return nil
		}
		d.index[contract] = path
		return nil
	})
	logger.Debug("indexed artifacts", "root", d.root, "count", len(d.index))
}

// Artifact implements Source.
func (d *Dir) Artifact(contract string) (*Artifact, error) {
	name := contractName(contract)
	if cached, ok := d.cache.Get(name); ok {
		return cached.(*Artifact), nil
	}

	d.once.Do(d.buildIndex)
	if d.err != nil {
		return nil, fmt.Errorf("index artifacts: %w", d.err)
	}
	path, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, contract, d.root)
	}

	a, err := loadHardhatArtifact(path)
	if err != nil {
		return nil, err
	}
	d.cache.Add(name, a)
	return a, nil
}

func loadHardhatArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	contractABI, err := abi.New(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("parse abi of %s: %w", path, err)
	}
	bytecode, err := hexutil.Decode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("decode bytecode of %s: %w", path, err)
	}
	name := raw.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &Artifact{
		ContractName: name,
		ABI:          contractABI,
		Bytecode:     bytecode,
	}, nil
}
