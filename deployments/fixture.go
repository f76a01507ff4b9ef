// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deployments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ali-staking/stakedeploy/chainclient"
)

// ErrNoSnapshots is returned by Fixture when the chain cannot take snapshots.
var ErrNoSnapshots = errors.New("chain does not support snapshots")

type fixture struct {
	snapshot    uint64
	deployments []*Deployment
}

// Fixture brings the chain and the store to the state right after running tags.
// The first call runs the scripts and snapshots the result, later calls revert to it.
func (m *Manager) Fixture(ctx context.Context, tags ...string) error {
	snapshotter, ok := m.transactor.Client().(chainclient.Snapshotter)
	if !ok {
		return ErrNoSnapshots
	}

	key := strings.Join(tags, ",")
	if f, ok := m.fixtures[key]; ok {
		if err := snapshotter.Revert(ctx, f.snapshot); err != nil {
			return fmt.Errorf("revert to fixture %q: %w", key, err)
		}
		if err := m.store.Restore(m.chainID, f.deployments); err != nil {
			return err
		}
		// a snapshot is used up by reverting to it
		id, err := snapshotter.Snapshot(ctx)
		if err != nil {
			return err
		}
		f.snapshot = id
		logger.Debug("fixture restored", "tags", key, "snapshot", id)
		return nil
	}

	if err := m.Run(ctx, tags...); err != nil {
		return err
	}
	id, err := snapshotter.Snapshot(ctx)
	if err != nil {
		return err
	}
	deployments, err := m.store.Snapshot(m.chainID)
	if err != nil {
		return err
	}
	m.fixtures[key] = &fixture{id, deployments}
	logger.Debug("fixture created", "tags", key, "snapshot", id)
	return nil
}
