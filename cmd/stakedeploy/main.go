// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ali-staking/stakedeploy/devchain"
	"github.com/ali-staking/stakedeploy/devchain/rpc"
	"github.com/ali-staking/stakedeploy/metrics"
	"github.com/ali-staking/stakedeploy/scripts"
)

// errInfoInProcess is returned by info on the in-process chain, which starts empty on every run.
var errInfoInProcess = errors.New("info reads recorded deployments: the in-process hardhat chain starts empty, pass --network with a persistent node")

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "stakedeploy",
		Usage:   "Deployment tooling of the ALI token staking contracts",
		Flags: []cli.Flag{
			verbosityFlag,
			jsonLogsFlag,
		},
		Before: func(ctx *cli.Context) error {
			return initLogger(ctx)
		},
		Commands: []cli.Command{
			{
				Name:   "deploy",
				Usage:  "run the tagged deploy scripts against a network",
				Flags:  []cli.Flag{configFlag, networkFlag, tagsFlag, resetFlag},
				Action: deployAction,
			},
			{
				Name:   "info",
				Usage:  "print the recorded deployments and the staking contract details of a persistent network",
				Flags:  []cli.Flag{configFlag, networkFlag},
				Action: infoAction,
			},
			{
				Name:   "node",
				Usage:  "run an in-process dev chain behind json-rpc",
				Flags:  []cli.Flag{addrFlag, corsFlag, chainIDFlag, enableMetricsFlag},
				Action: nodeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func deployAction(ctx *cli.Context) error {
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	e, err := newEnv(exitCtx, ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if ctx.Bool(resetFlag.Name) {
		if err := e.store.Restore(e.manager.ChainID(), nil); err != nil {
			return errors.Wrap(err, "reset deployments")
		}
		log.Info("recorded deployments cleared", "network", e.network)
	}

	tags := splitTags(ctx.String(tagsFlag.Name))
	log.Info("running deploy scripts", "network", e.network, "chainID", e.manager.ChainID(), "tags", tags)
	if err := e.manager.Run(exitCtx, tags...); err != nil {
		return errors.Wrap(err, "deploy")
	}

	all, err := e.manager.All()
	if err != nil {
		return err
	}
	for _, d := range all {
		log.Info("deployment", "name", d.Name, "contract", d.Contract, "address", d.Address, "block", d.BlockNumber)
	}
	return nil
}

func infoAction(ctx *cli.Context) error {
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	e, err := newEnv(exitCtx, ctx)
	if err != nil {
		return err
	}
	defer e.close()
	if e.inProcess {
		return errInfoInProcess
	}

	all, err := e.manager.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintf(e.manager.Out(), "no deployments on %s\n", e.network)
		return nil
	}
	for _, d := range all {
		fmt.Fprintf(e.manager.Out(), "%-16s %-14s %v (tx: %v)\n", d.Name, d.Contract, d.Address, d.TxHash)
	}

	proxy, err := e.manager.Get(scripts.StakingProxyName)
	if err != nil {
		return errors.Wrapf(err, "get %s", scripts.StakingProxyName)
	}
	_, err = scripts.PrintStakingDetails(exitCtx, e.manager, proxy.Address)
	return err
}

func nodeAction(ctx *cli.Context) error {
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	var opts []devchain.Option
	if ctx.IsSet(chainIDFlag.Name) {
		opts = append(opts, devchain.WithChainID(ctx.Uint64(chainIDFlag.Name)))
	}
	chain := devchain.New(opts...)

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}
	handler, stop, err := rpc.NewHTTPHandler(chain, rpc.HTTPOptions{
		Origins:       strings.Split(ctx.String(corsFlag.Name), ","),
		EnableMetrics: enableMetrics,
	})
	if err != nil {
		return err
	}
	defer stop()

	addr := ctx.String(addrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen json-rpc addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}

	printStartupMessage(chain, listener.Addr().String(), enableMetrics)

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("stopping json-rpc server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
