// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package devchain is an in-process development chain. Every accepted transaction is
// mined right away in its own block, and the chain supports time travel and snapshots.
package devchain

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/holiman/uint256"

	"github.com/ali-staking/stakedeploy/contracts"
	"github.com/ali-staking/stakedeploy/metrics"
	"github.com/ali-staking/stakedeploy/state"
	"github.com/ali-staking/stakedeploy/vm"
)

var logger = log.New("pkg", "devchain")

const (
	// DefaultChainID is the chain id of the hardhat network.
	DefaultChainID = 0xeeeb04de
	// DefaultGasLimit is the block gas limit.
	DefaultGasLimit = 30_000_000
)

var (
	// BaseFee is the fixed base fee of every block.
	BaseFee = big.NewInt(ethparams.InitialBaseFee)
	// DefaultTip is the suggested priority fee.
	DefaultTip = big.NewInt(ethparams.GWei)
	// DefaultBalance is the initial balance of every dev account, 10000 ETH.
	DefaultBalance = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(ethparams.Ether))
)

var (
	metricBlocks    = metrics.LazyLoadCounter("devchain_blocks_count")
	metricTxs       = metrics.LazyLoadCounterVec("devchain_txs_count", []string{"status"})
	metricSnapshots = metrics.LazyLoadGauge("devchain_snapshots")
)

type block struct {
	header *types.Header
	txs    []*types.Transaction
}

type txLookup struct {
	number uint64
	index  int
}

type snapshot struct {
	id         uint64
	state      *state.State
	height     int
	timeOffset int64
	nextTime   uint64
}

// Option configures a chain.
type Option func(*Chain)

// WithChainID overrides the chain id.
func WithChainID(id uint64) Option {
	return func(c *Chain) { c.chainID = new(big.Int).SetUint64(id) }
}

// WithClock overrides the wall clock the block times derive from.
func WithClock(clock func() time.Time) Option {
	return func(c *Chain) { c.clock = clock }
}

// WithRegistry overrides the native contracts the chain runs.
func WithRegistry(registry *vm.Registry) Option {
	return func(c *Chain) { c.registry = registry }
}

// WithAlloc funds an extra account at genesis.
func WithAlloc(addr common.Address, balance *big.Int) Option {
	return func(c *Chain) { c.alloc[addr] = balance }
}

// Chain is the dev chain. It is safe for concurrent use.
type Chain struct {
	lock     sync.Mutex
	chainID  *big.Int
	signer   types.Signer
	registry *vm.Registry
	clock    func() time.Time
	alloc    map[common.Address]*big.Int

	state      *state.State
	blocks     []*block
	txs        map[common.Hash]txLookup
	receipts   map[common.Hash]*types.Receipt
	timeOffset int64
	nextTime   uint64

	snapshots  []*snapshot
	lastSnapID uint64
}

// New creates a chain with the dev accounts funded at genesis.
func New(opts ...Option) *Chain {
	c := &Chain{
		chainID:  big.NewInt(DefaultChainID),
		clock:    time.Now,
		alloc:    make(map[common.Address]*big.Int),
		state:    state.New(),
		txs:      make(map[common.Hash]txLookup),
		receipts: make(map[common.Hash]*types.Receipt),
	}
	for _, acc := range DevAccounts() {
		c.alloc[acc.Address] = DefaultBalance
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = contracts.Registry()
	}
	c.signer = types.LatestSignerForChainID(c.chainID)

	for addr, balance := range c.alloc {
		c.state.SetBalance(addr, uint256.MustFromBig(balance))
	}
	c.state.Commit()

	genesis := &types.Header{
		Number:      new(big.Int),
		Time:        uint64(c.clock().Unix()),
		GasLimit:    DefaultGasLimit,
		Difficulty:  new(big.Int),
		BaseFee:     BaseFee,
		UncleHash:   types.EmptyUncleHash,
		TxHash:      types.EmptyTxsHash,
		ReceiptHash: types.EmptyReceiptsHash,
	}
	c.blocks = append(c.blocks, &block{header: genesis})

	logger.Debug("dev chain created", "chainID", c.chainID, "accounts", len(c.alloc), "genesis", genesis.Hash())
	return c
}

// Accounts returns the funded dev accounts.
func (c *Chain) Accounts() []DevAccount {
	return DevAccounts()
}

// ChainID returns the chain id.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Signer returns the signer transactions are checked with.
func (c *Chain) Signer() types.Signer {
	return c.signer
}

func (c *Chain) head() *block {
	return c.blocks[len(c.blocks)-1]
}

// BlockNumber returns the number of the latest block.
func (c *Chain) BlockNumber() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.head().header.Number.Uint64()
}

func (c *Chain) blockByNumber(number *big.Int) (*block, error) {
	if number == nil || number.Sign() < 0 {
		// latest, pending and friends
		return c.head(), nil
	}
	if !number.IsUint64() || number.Uint64() >= uint64(len(c.blocks)) {
		return nil, ethereum.NotFound
	}
	return c.blocks[number.Uint64()], nil
}

// HeaderByNumber returns the header of the numbered block, nil means the latest.
func (c *Chain) HeaderByNumber(number *big.Int) (*types.Header, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	b, err := c.blockByNumber(number)
	if err != nil {
		return nil, err
	}
	return types.CopyHeader(b.header), nil
}

// BlockByNumber returns the numbered block with its transactions, nil means the latest.
func (c *Chain) BlockByNumber(number *big.Int) (*types.Block, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	b, err := c.blockByNumber(number)
	if err != nil {
		return nil, err
	}
	return types.NewBlockWithHeader(b.header).WithBody(types.Body{Transactions: b.txs}), nil
}

// checkStateAt ensures state reads target the latest block, the only state kept.
func (c *Chain) checkStateAt(number *big.Int) error {
	if number == nil || number.Sign() < 0 || number.Cmp(c.head().header.Number) == 0 {
		return nil
	}
	return fmt.Errorf("%w: block %v", ErrHistoricalState, number)
}

// BalanceAt returns the balance of addr.
func (c *Chain) BalanceAt(addr common.Address, number *big.Int) (*big.Int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.checkStateAt(number); err != nil {
		return nil, err
	}
	return c.state.GetBalance(addr).ToBig(), nil
}

// NonceAt returns the nonce of addr.
func (c *Chain) NonceAt(addr common.Address, number *big.Int) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.checkStateAt(number); err != nil {
		return 0, err
	}
	return c.state.GetNonce(addr), nil
}

// CodeAt returns the code of addr.
func (c *Chain) CodeAt(addr common.Address, number *big.Int) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.checkStateAt(number); err != nil {
		return nil, err
	}
	return c.state.GetCode(addr), nil
}

// StorageAt returns the storage slot key of addr.
func (c *Chain) StorageAt(addr common.Address, key common.Hash, number *big.Int) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.checkStateAt(number); err != nil {
		return nil, err
	}
	return c.state.GetStorage(addr, key).Bytes(), nil
}

// TransactionReceipt returns the receipt of a mined transaction.
func (c *Chain) TransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// TransactionByHash returns a mined transaction.
func (c *Chain) TransactionByHash(hash common.Hash) (*types.Transaction, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	lookup, ok := c.txs[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return c.blocks[lookup.number].txs[lookup.index], nil
}

func (c *Chain) now() int64 {
	return c.clock().Unix() + c.timeOffset
}

// pendingTime is the timestamp the next block gets.
func (c *Chain) pendingTime() uint64 {
	if c.nextTime != 0 {
		return c.nextTime
	}
	parent := c.head().header.Time
	if now := c.now(); now > int64(parent) {
		return uint64(now)
	}
	return parent + 1
}

func (c *Chain) pendingContext() vm.BlockContext {
	return vm.BlockContext{
		Number:   c.head().header.Number.Uint64() + 1,
		Time:     c.pendingTime(),
		GasLimit: DefaultGasLimit,
		ChainID:  c.chainID,
	}
}

// SetNextBlockTimestamp fixes the timestamp of the next block.
// Later blocks continue from it.
func (c *Chain) SetNextBlockTimestamp(timestamp uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if parent := c.head().header.Time; timestamp <= parent {
		return fmt.Errorf("%w: %d <= %d", ErrTimestamp, timestamp, parent)
	}
	c.nextTime = timestamp
	return nil
}

// IncreaseTime moves the clock forward and returns the total offset in seconds.
func (c *Chain) IncreaseTime(seconds uint64) int64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.timeOffset += int64(seconds)
	return c.timeOffset
}

// Mine mines an empty block.
func (c *Chain) Mine() *types.Header {
	c.lock.Lock()
	defer c.lock.Unlock()

	return types.CopyHeader(c.seal(nil, nil).header)
}

// Snapshot saves the chain and returns the snapshot id.
func (c *Chain) Snapshot() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.lastSnapID++
	c.snapshots = append(c.snapshots, &snapshot{
		id:         c.lastSnapID,
		state:      c.state.Copy(),
		height:     len(c.blocks),
		timeOffset: c.timeOffset,
		nextTime:   c.nextTime,
	})
	metricSnapshots().Set(int64(len(c.snapshots)))
	logger.Debug("snapshot taken", "id", c.lastSnapID, "number", c.head().header.Number)
	return c.lastSnapID
}

// Revert restores the chain saved by the snapshot. The snapshot and every later one are dropped.
func (c *Chain) Revert(id uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	for i, snap := range c.snapshots {
		if snap.id != id {
			continue
		}
		for _, b := range c.blocks[snap.height:] {
			for _, tx := range b.txs {
				delete(c.txs, tx.Hash())
				delete(c.receipts, tx.Hash())
			}
		}
		c.blocks = c.blocks[:snap.height]
		c.state = snap.state.Copy()
		c.timeOffset = snap.timeOffset
		c.nextTime = snap.nextTime
		c.snapshots = c.snapshots[:i]
		metricSnapshots().Set(int64(len(c.snapshots)))

		logger.Debug("reverted to snapshot", "id", id, "number", c.head().header.Number)
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownSnapshot, id)
}

// seal appends a block with the given transaction, if any, executed by exec.
func (c *Chain) seal(tx *types.Transaction, exec func(header *types.Header) *types.Receipt) *block {
	parent := c.head().header
	header := &types.Header{
		ParentHash:  parent.Hash(),
		Number:      new(big.Int).Add(parent.Number, common.Big1),
		Time:        c.pendingTime(),
		GasLimit:    DefaultGasLimit,
		Difficulty:  new(big.Int),
		BaseFee:     BaseFee,
		UncleHash:   types.EmptyUncleHash,
		TxHash:      types.EmptyTxsHash,
		ReceiptHash: types.EmptyReceiptsHash,
	}
	if c.nextTime != 0 {
		c.timeOffset = int64(c.nextTime) - c.clock().Unix()
		c.nextTime = 0
	}

	b := &block{header: header}
	var receipts types.Receipts
	if tx != nil {
		receipt := exec(header)
		b.txs = []*types.Transaction{tx}
		receipts = types.Receipts{receipt}

		header.GasUsed = receipt.GasUsed
		header.Bloom = receipt.Bloom
		header.TxHash = types.DeriveSha(types.Transactions(b.txs), trie.NewStackTrie(nil))
		header.ReceiptHash = types.DeriveSha(receipts, trie.NewStackTrie(nil))
	}

	hash := header.Hash()
	for i, receipt := range receipts {
		receipt.BlockHash = hash
		for _, l := range receipt.Logs {
			l.BlockHash = hash
		}
		c.txs[receipt.TxHash] = txLookup{header.Number.Uint64(), i}
		c.receipts[receipt.TxHash] = receipt
	}
	c.blocks = append(c.blocks, b)
	metricBlocks().Add(1)
	return b
}
