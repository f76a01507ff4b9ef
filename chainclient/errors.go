// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainclient

import "errors"

// ErrRevertSnapshot is returned when the node refuses to revert to a snapshot.
var ErrRevertSnapshot = errors.New("snapshot revert refused")
