// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ali-staking/stakedeploy/config"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Value: config.DefaultFile,
		Usage: "project file with networks, named accounts and paths",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network to deploy to, the default network of the project file if unset",
	}
	tagsFlag = cli.StringFlag{
		Name:  "tags",
		Value: "deploy",
		Usage: "comma separated tags of the deploy scripts to run",
	}
	resetFlag = cli.BoolFlag{
		Name:  "reset",
		Usage: "forget the recorded deployments of the network before deploying",
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Value: "localhost:8545",
		Usage: "json-rpc listening address",
	}
	corsFlag = cli.StringFlag{
		Name:  "cors",
		Value: "*",
		Usage: "comma separated list of domains from which to accept cross origin requests",
	}
	chainIDFlag = cli.Uint64Flag{
		Name:  "chain-id",
		Usage: "chain id of the dev chain, the hardhat network one if unset",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "serve prometheus metrics at /metrics",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
)
