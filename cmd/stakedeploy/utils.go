// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ali-staking/stakedeploy/artifacts"
	"github.com/ali-staking/stakedeploy/chainclient"
	"github.com/ali-staking/stakedeploy/config"
	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/deployments"
	"github.com/ali-staking/stakedeploy/devchain"
	"github.com/ali-staking/stakedeploy/lvldb"
	"github.com/ali-staking/stakedeploy/scripts"
	"github.com/ali-staking/stakedeploy/transact"
)

func initLogger(ctx *cli.Context) error {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > 9 {
		return fmt.Errorf("verbosity %d out of range (0-9)", verbosity)
	}
	level := log.FromLegacyLevel(int(verbosity))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// loadConfig reads the project file. A missing default project file means the defaults.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String(configFlag.Name)
	if _, err := os.Stat(path); os.IsNotExist(err) && !ctx.IsSet(configFlag.Name) {
		log.Debug("no project file, using defaults", "path", path)
		return config.Parse(nil)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load project file [%v]", path)
	}
	return cfg, nil
}

// env is what the deploy and info commands work with.
type env struct {
	network   string
	inProcess bool
	manager *deployments.Manager
	store   *deployments.Store
	closers []func() error
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			log.Warn("close", "err", err)
		}
	}
}

func newEnv(ctx context.Context, cliCtx *cli.Context) (_ *env, err error) {
	cfg, err := loadConfig(cliCtx)
	if err != nil {
		return nil, err
	}
	name, network, err := cfg.Network(cliCtx.String(networkFlag.Name))
	if err != nil {
		return nil, err
	}

	e := &env{network: name, inProcess: network.InProcess()}
	defer func() {
		if err != nil {
			e.close()
		}
	}()

	var client chainclient.Client
	if network.InProcess() {
		client = devchain.NewClient(devchain.New(devchain.WithChainID(network.ChainID)))
	} else {
		c, err := chainclient.Dial(ctx, network.URL)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s [%v]", name, network.URL)
		}
		e.closers = append(e.closers, func() error { c.Close(); return nil })
		client = c
	}

	keys, err := network.Keys()
	if err != nil {
		return nil, errors.Wrapf(err, "accounts of %s", name)
	}
	tip, err := network.GasTipCap()
	if err != nil {
		return nil, err
	}
	var opts []transact.Option
	if tip != nil {
		opts = append(opts, transact.WithGasTipCap(tip))
	}
	tr, err := transact.New(ctx, client, keys, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", name)
	}
	if network.ChainID != 0 && tr.ChainID().Uint64() != network.ChainID {
		return nil, fmt.Errorf("network %s: chain id %v, expected %d", name, tr.ChainID(), network.ChainID)
	}

	if network.InProcess() {
		if e.store, err = deployments.NewMemStore(); err != nil {
			return nil, err
		}
	} else {
		dir := filepath.Join(cfg.Paths.Deployments, name)
		db, err := lvldb.New(dir, lvldb.Options{})
		if err != nil {
			return nil, errors.Wrapf(err, "open deployments database [%v]", dir)
		}
		e.closers = append(e.closers, db.Close)
		e.store = deployments.NewStore(db)
	}

	named, err := cfg.ResolveNamedAccounts(tr.ChainID(), tr.Accounts())
	if err != nil {
		return nil, err
	}
	source, err := artifactSource(cfg, network)
	if err != nil {
		return nil, err
	}

	e.manager = deployments.NewManager(tr, deployments.Config{
		Network:       name,
		NamedAccounts: named,
		Artifacts:     source,
		Store:         e.store,
		Out:           os.Stdout,
	})
	scripts.Register(e.manager)
	return e, nil
}

// artifactSource serves the native contracts on the dev chain. Remote networks prefer
// compiled artifacts when the artifacts directory exists.
func artifactSource(cfg *config.Config, network *config.Network) (artifacts.Source, error) {
	native := contracts.Artifacts()
	if network.InProcess() {
		return native, nil
	}
	if _, err := os.Stat(cfg.Paths.Artifacts); os.IsNotExist(err) {
		return native, nil
	}
	dir, err := artifacts.NewDir(cfg.Paths.Artifacts)
	if err != nil {
		return nil, errors.Wrapf(err, "load artifacts [%v]", cfg.Paths.Artifacts)
	}
	return artifacts.Sources{dir, native}, nil
}

func printStartupMessage(chain *devchain.Chain, addr string, enableMetrics bool) {
	printAccounts(os.Stdout, chain)
	metricsURL := "Disabled"
	if enableMetrics {
		metricsURL = "http://" + addr + "/metrics"
	}
	fmt.Printf(`Starting dev chain
    Chain ID    [ %v ]
    JSON-RPC    [ http://%v/ ]
    Metrics     [ %v ]
`, chain.ChainID(), addr, metricsURL)
}

func printAccounts(w io.Writer, chain *devchain.Chain) {
	fmt.Fprintln(w, "Accounts")
	for i, acc := range chain.Accounts() {
		balance, _ := chain.BalanceAt(acc.Address, nil)
		fmt.Fprintf(w, "    #%d %v (%s ETH)\n", i, acc.Address, scripts.FormatEther(balance))
	}
}
