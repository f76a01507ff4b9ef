// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/ali-staking/stakedeploy/kv"
	"github.com/ali-staking/stakedeploy/lvldb"
)

// ErrNotFound is returned for an unknown deployment.
var ErrNotFound = errors.New("deployment not found")

// Store persists deployment records, keyed by chain id and name.
type Store struct {
	db kv.Store
}

// NewStore creates a store over db.
func NewStore(db kv.Store) *Store {
	return &Store{db}
}

// NewMemStore creates a store that lives in memory.
func NewMemStore() (*Store, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) bucket(chainID *big.Int) kv.Store {
	return kv.Bucket("d/" + chainID.String() + "/").NewStore(s.db)
}

// Get returns the named deployment.
func (s *Store) Get(chainID *big.Int, name string) (*Deployment, error) {
	bucket := s.bucket(chainID)
	data, err := bucket.Get([]byte(name))
	if err != nil {
		if bucket.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, pkgerrors.Wrap(err, "get deployment")
	}
	var d Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, pkgerrors.Wrapf(err, "decode deployment %s", name)
	}
	return &d, nil
}

// Put saves d, replacing the deployment of the same name.
func (s *Store) Put(chainID *big.Int, d *Deployment) error {
	data, err := json.Marshal(d)
	if err != nil {
		return pkgerrors.Wrap(err, "encode deployment")
	}
	return pkgerrors.Wrap(s.bucket(chainID).Put([]byte(d.Name), data), "put deployment")
}

// Delete removes the named deployment.
func (s *Store) Delete(chainID *big.Int, name string) error {
	return pkgerrors.Wrap(s.bucket(chainID).Delete([]byte(name)), "delete deployment")
}

// All returns the deployments of a chain, ordered by name.
func (s *Store) All(chainID *big.Int) ([]*Deployment, error) {
	iter := s.bucket(chainID).Iterate(kv.Range{})
	defer iter.Release()

	var all []*Deployment
	for iter.Next() {
		var d Deployment
		if err := json.Unmarshal(iter.Value(), &d); err != nil {
			return nil, pkgerrors.Wrapf(err, "decode deployment %s", iter.Key())
		}
		all = append(all, &d)
	}
	if err := iter.Error(); err != nil {
		return nil, pkgerrors.Wrap(err, "iterate deployments")
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// Snapshot returns the deployments of a chain, to be restored later.
func (s *Store) Snapshot(chainID *big.Int) ([]*Deployment, error) {
	return s.All(chainID)
}

// Restore replaces the deployments of a chain with a snapshot.
func (s *Store) Restore(chainID *big.Int, snapshot []*Deployment) error {
	current, err := s.All(chainID)
	if err != nil {
		return err
	}
	batch := s.bucket(chainID).NewBatch()
	for _, d := range current {
		if err := batch.Delete([]byte(d.Name)); err != nil {
			return err
		}
	}
	for _, d := range snapshot {
		data, err := json.Marshal(d)
		if err != nil {
			return pkgerrors.Wrap(err, "encode deployment")
		}
		if err := batch.Put([]byte(d.Name), data); err != nil {
			return err
		}
	}
	return pkgerrors.Wrap(batch.Write(), "restore deployments")
}
