// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deployments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ali-staking/stakedeploy/artifacts"
	"github.com/ali-staking/stakedeploy/metrics"
	"github.com/ali-staking/stakedeploy/transact"
)

var logger = log.New("pkg", "deployments")

var (
	metricDeployed = metrics.LazyLoadCounter("deployments_count")
	metricReused   = metrics.LazyLoadCounter("deployments_reused_count")
)

// Config configures a manager.
type Config struct {
	// Network is the name of the target network, informational.
	Network string
	// NamedAccounts maps account names to addresses, resolved for the target chain.
	NamedAccounts map[string]common.Address
	Artifacts     artifacts.Source
	Store         *Store
	// Out receives what scripts print, stdout when nil.
	Out io.Writer
}

// DeployOptions describes a deployment.
type DeployOptions struct {
	From     common.Address
	Contract string
	Args     []any
	// SkipIfAlreadyDeployed reuses a recorded deployment whose code still exists,
	// even if the bytecode or the args changed.
	SkipIfAlreadyDeployed bool
	// Log prints the deployment progress.
	Log bool
}

// Manager deploys contracts by name and runs deploy scripts.
type Manager struct {
	transactor *transact.Transactor
	chainID    *big.Int
	network    string
	named      map[string]common.Address
	source     artifacts.Source
	store      *Store
	out        io.Writer

	scripts  []*Script
	fixtures map[string]*fixture
}

// NewManager creates a manager sending transactions through transactor.
func NewManager(transactor *transact.Transactor, cfg Config) *Manager {
	m := &Manager{
		transactor: transactor,
		chainID:    transactor.ChainID(),
		network:    cfg.Network,
		named:      maps.Clone(cfg.NamedAccounts),
		source:     cfg.Artifacts,
		store:      cfg.Store,
		out:        cfg.Out,
		fixtures:   make(map[string]*fixture),
	}
	if m.named == nil {
		m.named = make(map[string]common.Address)
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	return m
}

func (m *Manager) ChainID() *big.Int { return new(big.Int).Set(m.chainID) }

func (m *Manager) Network() string { return m.network }

func (m *Manager) Transactor() *transact.Transactor { return m.transactor }

func (m *Manager) Out() io.Writer { return m.out }

// NamedAccounts returns a copy of the named accounts.
func (m *Manager) NamedAccounts() map[string]common.Address {
	return maps.Clone(m.named)
}

// Get returns the named deployment.
func (m *Manager) Get(name string) (*Deployment, error) {
	return m.store.Get(m.chainID, name)
}

// All returns every deployment of the chain.
func (m *Manager) All() ([]*Deployment, error) {
	return m.store.All(m.chainID)
}

// reusable returns the recorded deployment of name when it can be kept.
func (m *Manager) reusable(ctx context.Context, name string, art *artifacts.Artifact, argsData []byte, opts *DeployOptions) (*Deployment, error) {
	existing, err := m.store.Get(m.chainID, name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	code, err := m.transactor.Client().CodeAt(ctx, existing.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("get code of %s: %w", name, err)
	}
	if len(code) == 0 {
		logger.Debug("recorded deployment has no code", "name", name, "address", existing.Address)
		return nil, nil
	}
	if opts.SkipIfAlreadyDeployed {
		return existing, nil
	}
	if existing.BytecodeHash == art.BytecodeHash() && bytes.Equal(existing.ArgsData, argsData) {
		return existing, nil
	}
	return nil, nil
}

// Deploy deploys a contract under name, unless a recorded deployment can be reused.
func (m *Manager) Deploy(ctx context.Context, name string, opts DeployOptions) (*Deployment, error) {
	art, err := m.source.Artifact(opts.Contract)
	if err != nil {
		return nil, err
	}
	data, err := art.CreationData(opts.Args...)
	if err != nil {
		return nil, err
	}
	argsData := data[len(art.Bytecode):]

	existing, err := m.reusable(ctx, name, art, argsData, &opts)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metricReused().Add(1)
		logger.Debug("reusing deployment", "name", name, "address", existing.Address)
		if opts.Log {
			fmt.Fprintf(m.out, "reusing %q at %v\n", name, existing.Address)
		}
		return existing, nil
	}

	args, err := encodeArgs(opts.Args)
	if err != nil {
		return nil, fmt.Errorf("encode args of %s: %w", name, err)
	}

	receipt, err := m.transactor.Send(ctx, &transact.Tx{From: opts.From, Data: data})
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	header, err := m.transactor.Client().HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("get block of %s: %w", name, err)
	}

	d := &Deployment{
		Name:         name,
		Contract:     art.ContractName,
		Address:      receipt.ContractAddress,
		ABI:          art.ABI.JSON(),
		TxHash:       receipt.TxHash,
		BlockNumber:  receipt.BlockNumber.Uint64(),
		Deployer:     opts.From,
		Args:         args,
		ArgsData:     argsData,
		BytecodeHash: art.BytecodeHash(),
		GasUsed:      receipt.GasUsed,
		Timestamp:    header.Time,
		Newly:        true,
	}
	if err := m.store.Put(m.chainID, d); err != nil {
		return nil, err
	}
	metricDeployed().Add(1)
	logger.Info("contract deployed", "name", name, "contract", art.ContractName, "address", d.Address, "tx", d.TxHash, "gasUsed", d.GasUsed)
	if opts.Log {
		fmt.Fprintf(m.out, "deploying %q (tx: %v)...: deployed at %v with %d gas\n", name, d.TxHash, d.Address, d.GasUsed)
	}
	return d, nil
}
