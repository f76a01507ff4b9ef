// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scripts holds the deploy scripts of the staking contracts.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ali-staking/stakedeploy/bindings"
	"github.com/ali-staking/stakedeploy/deployments"
)

var logger = log.New("pkg", "scripts")

const (
	// HardhatChainID is the chain id mock tokens are deployed on.
	HardhatChainID = 0xeeeb04de

	// LockupDays is the initial lockup of the staking contract.
	LockupDays = 40

	TokenAccount = "ali_token"

	TokenMockName    = "ALI_Mock"
	StakingName      = "Staking"
	StakingProxyName = "Staking_Proxy"
)

// ErrNoToken is returned when no token is configured for a chain that gets no mock.
var ErrNoToken = errors.New("named account " + TokenAccount + " is not set")

// MockSupply is the initial supply of the mock token, 10 billion tokens of 18 decimals.
var MockSupply, _ = new(big.Int).SetString("10000000000000000000000000000", 10)

// DeployStaking deploys the token mock if needed, the staking implementation and its proxy.
var DeployStaking = &deployments.Script{
	Name: "deploy_staking",
	Tags: []string{"v2_deploy", "deploy", "v2"},
	Run:  deployStaking,
}

// Register adds every deploy script to m.
func Register(m *deployments.Manager) {
	m.Register(DeployStaking)
}

func deployStaking(ctx context.Context, m *deployments.Manager) error {
	tr := m.Transactor()
	a0, err := tr.Account(0)
	if err != nil {
		return err
	}
	nonce, err := tr.Client().NonceAt(ctx, a0, nil)
	if err != nil {
		return err
	}
	balance, err := tr.Client().BalanceAt(ctx, a0, nil)
	if err != nil {
		return err
	}

	chainID := m.ChainID()
	out := m.Out()
	fmt.Fprintf(out, "network %d %q\n", chainID, m.Network())
	fmt.Fprintf(out, "service account %v, nonce: %d, balance: %s ETH\n", a0, nonce, FormatEther(balance))

	aliAddress, ok := m.NamedAccounts()[TokenAccount]
	if !ok && chainID.Cmp(big.NewInt(HardhatChainID)) == 0 {
		mock, err := m.Deploy(ctx, TokenMockName, deployments.DeployOptions{
			From:                  a0,
			Contract:              "TokenMock",
			Args:                  []any{"ALI", "ALI ERC20 Mock", MockSupply},
			SkipIfAlreadyDeployed: true,
			Log:                   true,
		})
		if err != nil {
			return err
		}
		aliAddress, ok = mock.Address, true
	}
	if !ok {
		return fmt.Errorf("%w for chain %d", ErrNoToken, chainID)
	}

	impl, err := m.Deploy(ctx, StakingName, deployments.DeployOptions{
		From:                  a0,
		Contract:              "StakingImpl",
		SkipIfAlreadyDeployed: true,
		Log:                   true,
	})
	if err != nil {
		return err
	}

	implABI, err := impl.ParseABI()
	if err != nil {
		return err
	}
	initData, err := implABI.Pack("postConstruct", aliAddress, big.NewInt(LockupDays*86400))
	if err != nil {
		return err
	}

	proxy, err := m.Deploy(ctx, StakingProxyName, deployments.DeployOptions{
		From:                  a0,
		Contract:              "ERC1967Proxy",
		Args:                  []any{impl.Address, initData},
		SkipIfAlreadyDeployed: true,
		Log:                   true,
	})
	if err != nil {
		return err
	}
	logger.Info("staking deployed", "token", aliAddress, "implementation", impl.Address, "proxy", proxy.Address)

	_, err = PrintStakingDetails(ctx, m, proxy.Address)
	return err
}

// StakingDetails are the ownership details of a staking contract.
type StakingDetails struct {
	Owner       common.Address
	Token       common.Address
	UnlockTime  *big.Int
	TotalSupply *big.Int
}

// PrintStakingDetails reads the staking contract at address and prints it as a table.
func PrintStakingDetails(ctx context.Context, m *deployments.Manager, address common.Address) (*StakingDetails, error) {
	staking := bindings.NewStaking(address, m.Transactor())

	var (
		details StakingDetails
		err     error
	)
	if details.Owner, err = staking.Owner(ctx); err != nil {
		return nil, err
	}
	if details.Token, err = staking.Token(ctx); err != nil {
		return nil, err
	}
	if details.UnlockTime, err = staking.GetUnlockTime(ctx); err != nil {
		return nil, err
	}
	if details.TotalSupply, err = staking.TotalSupply(ctx); err != nil {
		return nil, err
	}

	fmt.Fprintf(m.Out(), "successfully connected to Staking at %v\n", address)
	printTable(m.Out(), [][]string{
		{"Owner", details.Owner.Hex()},
		{"Token Address", details.Token.Hex()},
		{"Unlock Time", details.UnlockTime.String()},
		{"Total Supply", details.TotalSupply.String()},
	})
	return &details, nil
}
