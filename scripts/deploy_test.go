// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scripts

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-staking/stakedeploy/bindings"
	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/deployments"
	"github.com/ali-staking/stakedeploy/devchain"
	"github.com/ali-staking/stakedeploy/transact"
)

func TestDeployStaking(t *testing.T) {
	out := new(bytes.Buffer)
	m, client := newManager(t, out)
	ctx := context.Background()

	require.NoError(t, m.Run(ctx, "v2_deploy"))

	a0 := m.Transactor().Accounts()[0]
	assert.Contains(t, out.String(), `network 4008379614 "hardhat"`)
	assert.Contains(t, out.String(), "service account "+a0.Hex()+", nonce: 0, balance: 10000 ETH")
	assert.Contains(t, out.String(), `deploying "ALI_Mock"`)
	assert.Contains(t, out.String(), `deploying "Staking"`)
	assert.Contains(t, out.String(), `deploying "Staking_Proxy"`)

	mock, err := m.Get(TokenMockName)
	require.NoError(t, err)
	assert.Equal(t, "TokenMock", mock.Contract)
	assert.JSONEq(t, `["ALI","ALI ERC20 Mock","10000000000000000000000000000"]`, string(mock.Args))

	impl, err := m.Get(StakingName)
	require.NoError(t, err)
	proxy, err := m.Get(StakingProxyName)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "successfully connected to Staking at "+proxy.Address.Hex())
	assert.Contains(t, out.String(), "Unlock Time")

	implSlot, err := client.StorageAt(ctx, proxy.Address, contracts.ImplementationSlot, nil)
	require.NoError(t, err)
	assert.Equal(t, impl.Address, common.BytesToAddress(implSlot))

	supply, err := bindings.NewToken(mock.Address, m.Transactor()).BalanceOf(ctx, a0)
	require.NoError(t, err)
	assert.Equal(t, MockSupply, supply)

	// running again reuses every deployment
	number, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, m.Run(ctx, "deploy"))
	assert.Contains(t, out.String(), `reusing "Staking_Proxy" at `+proxy.Address.Hex())
	after, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, number, after)
}

func TestDeployStakingConfiguredToken(t *testing.T) {
	out := new(bytes.Buffer)
	client := devchain.NewClient(devchain.New(devchain.WithChainID(1)))
	var keys []*ecdsa.PrivateKey
	for _, acc := range devchain.DevAccounts() {
		keys = append(keys, acc.PrivateKey)
	}
	tr, err := transact.New(context.Background(), client, keys)
	require.NoError(t, err)
	store, err := deployments.NewMemStore()
	require.NoError(t, err)

	newMainnetManager := func(named map[string]common.Address) *deployments.Manager {
		m := deployments.NewManager(tr, deployments.Config{
			Network:       "mainnet",
			NamedAccounts: named,
			Artifacts:     contracts.Artifacts(),
			Store:         store,
			Out:           out,
		})
		Register(m)
		return m
	}

	ctx := context.Background()
	err = newMainnetManager(nil).Run(ctx, "deploy")
	assert.ErrorIs(t, err, ErrNoToken)

	// a token deployed elsewhere
	tokenData, err := contracts.TokenMock.Artifact().CreationData("ALI", "Artificial Liquid Intelligence Token", big.NewInt(1e6))
	require.NoError(t, err)
	receipt, err := tr.Send(ctx, &transact.Tx{From: tr.Accounts()[1], Data: tokenData})
	require.NoError(t, err)

	m := newMainnetManager(map[string]common.Address{TokenAccount: receipt.ContractAddress})
	require.NoError(t, m.Run(ctx, "v2"))

	_, err = m.Get(TokenMockName)
	assert.ErrorIs(t, err, deployments.ErrNotFound)
	proxy, err := m.Get(StakingProxyName)
	require.NoError(t, err)

	details, err := PrintStakingDetails(ctx, m, proxy.Address)
	require.NoError(t, err)
	assert.Equal(t, receipt.ContractAddress, details.Token)
	assert.Equal(t, tr.Accounts()[0], details.Owner)
	assert.Equal(t, new(big.Int).SetUint64(proxy.Timestamp+LockupDays*86400), details.UnlockTime)
	assert.Equal(t, 0, details.TotalSupply.Sign())
}

func TestFormatEther(t *testing.T) {
	for _, tc := range []struct {
		wei  string
		want string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"10000000000000000000000", "10000"},
		{"-2250000000000000000", "-2.25"},
	} {
		wei, ok := new(big.Int).SetString(tc.wei, 10)
		require.True(t, ok)
		assert.Equal(t, tc.want, FormatEther(wei), tc.wei)
	}
	assert.Equal(t, "0", FormatEther(nil))
}
