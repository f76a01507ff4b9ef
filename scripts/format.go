// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scripts

import (
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/olekukonko/tablewriter"
)

// FormatEther renders an amount of wei in ether, without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(wei), big.NewInt(params.Ether), new(big.Int))
	if rem.Sign() == 0 {
		return sign + quo.String()
	}
	frac := rem.String()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	return sign + quo.String() + "." + strings.TrimRight(frac, "0")
}

func printTable(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}
