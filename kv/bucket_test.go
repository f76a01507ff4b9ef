// Copyright (c) 2021 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func TestBucketGetter(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b     Bucket
		key   string
		want  string
		found bool
	}{
		{Bucket(""), "k1", "v1", true},
		{Bucket(""), "k2", "v2", true},
		{Bucket("k"), "k1", "", false},
		{Bucket("k"), "1", "v1", true},
		{Bucket("k"), "2", "v2", true},
		{Bucket("k1"), "", "v1", true},
	}
	for _, tt := range tests {
		getter := tt.b.NewGetter(m)

		got, err := getter.Get([]byte(tt.key))
		if tt.found {
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		} else {
			assert.True(t, getter.IsNotFound(err))
		}

		has, err := getter.Has([]byte(tt.key))
		assert.NoError(t, err)
		assert.Equal(t, tt.found, has)
	}
}

func TestBucketPutter(t *testing.T) {
	m := mem{}
	putter := Bucket("b/").NewPutter(m)

	assert.NoError(t, putter.Put([]byte("k1"), []byte("v1")))
	assert.Equal(t, mem{"b/k1": "v1"}, m)

	assert.NoError(t, putter.Delete([]byte("k1")))
	assert.Empty(t, m)
}

func TestPrefixRange(t *testing.T) {
	r := PrefixRange([]byte("ab"))
	assert.Equal(t, []byte("ab"), r.Start)
	assert.Equal(t, []byte("ac"), r.Limit)

	r = PrefixRange([]byte{0xff})
	assert.Nil(t, r.Limit)
}
