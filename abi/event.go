// Copyright (c) 2018 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 common.Hash
	event              *ethabi.Event
	argsWithoutIndexed ethabi.Arguments
	indexedArgs        ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var argsWithoutIndexed, indexedArgs ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexedArgs = append(indexedArgs, arg)
		} else {
			argsWithoutIndexed = append(argsWithoutIndexed, arg)
		}
	}
	return &Event{
		event.ID,
		event,
		argsWithoutIndexed,
		indexedArgs,
	}
}

// ID returns event id.
func (e *Event) ID() common.Hash {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(args...)
}

// Topics builds the topic list of a log: the event id followed by the indexed args.
func (e *Event) Topics(indexed ...any) ([]common.Hash, error) {
	if len(indexed) != len(e.indexedArgs) {
		return nil, errors.New("indexed argument count mismatch")
	}
	topics := []common.Hash{e.id}
	if len(indexed) == 0 {
		return topics, nil
	}
	query := make([][]any, 0, len(indexed))
	for _, arg := range indexed {
		query = append(query, []any{arg})
	}
	made, err := ethabi.MakeTopics(query...)
	if err != nil {
		return nil, err
	}
	for _, t := range made {
		topics = append(topics, t[0])
	}
	return topics, nil
}

// Decode decodes event data.
func (e *Event) Decode(data []byte, v any) error {
	values, err := e.argsWithoutIndexed.Unpack(data)
	if err != nil {
		return err
	}
	return e.argsWithoutIndexed.Copy(v, values)
}

// DecodeLog decodes both the indexed topics and the data of a log into out, keyed by argument name.
func (e *Event) DecodeLog(log *types.Log, out map[string]any) error {
	if len(log.Topics) == 0 || log.Topics[0] != e.id {
		return errors.New("log does not match event")
	}
	if len(log.Topics)-1 != len(e.indexedArgs) {
		return errors.New("indexed topic count mismatch")
	}
	if err := ethabi.ParseTopicsIntoMap(out, e.indexedArgs, log.Topics[1:]); err != nil {
		return err
	}
	return e.argsWithoutIndexed.UnpackIntoMap(out, log.Data)
}
