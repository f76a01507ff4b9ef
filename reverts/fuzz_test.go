// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonRandomMessages(t *testing.T) {
	f := fuzz.NewWithSeed(42).NilChance(0)
	for range 200 {
		var msg string
		f.Fuzz(&msg)

		payload := NewRequireError(msg).Bytes()
		decoded, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)

		reason, ok := Reason(fmt.Errorf("send: %w", &rpcError{hexutil.Encode(payload)}))
		assert.True(t, ok)
		assert.Equal(t, msg, reason)
	}
}

func TestReasonRandomData(t *testing.T) {
	f := fuzz.NewWithSeed(7).NilChance(0.1).NumElements(0, 200)
	for range 500 {
		var data []byte
		f.Fuzz(&data)
		assert.NotPanics(t, func() {
			reason, ok := Reason(&rpcError{data})
			if !ok {
				assert.Empty(t, reason)
			}
			_, _ = Decode(data)
		})
	}
}
