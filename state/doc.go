// Copyright (c) 2018 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the world state of the dev chain: balances, nonces, code and storage
// of every account. Writes are journaled so that a failed call can be reverted to a checkpoint,
// and committed once a block is sealed.
package state
