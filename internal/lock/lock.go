/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package lock orders pessimistic row locks so that no two operations can wait on each other.
//
// Every lock key has a rank (payment account, then exchange trade, then wallet account) and keys are
// always taken in (rank, id) order. A Scope remembers what one logical operation already holds: a key
// held twice is never locked again, and a key that sorts below something already held is refused
// instead of risking a cycle.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

var ErrOrder = errors.New("lock requested out of order")

// Kind identifies the table a lock key refers to. Its numeric value is the acquisition rank.
type Kind int

const (
	PaymentAccount Kind = iota
	ExchangeTrade
	WalletAccount
)

func (k Kind) String() string {
	switch k {
	case PaymentAccount:
		return "payment_account"
	case ExchangeTrade:
		return "exchange_trade"
	case WalletAccount:
		return "wallet_account"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Key names one lockable row.
type Key struct {
	Kind Kind
	Id   string
}

func (k Key) String() string {
	return k.Kind.String() + ":" + k.Id
}

func PaymentAccountKey(id string) Key { return Key{Kind: PaymentAccount, Id: id} }
func ExchangeTradeKey(id string) Key  { return Key{Kind: ExchangeTrade, Id: id} }
func WalletAccountKey(id string) Key  { return Key{Kind: WalletAccount, Id: id} }

func less(a, b Key) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Id < b.Id
}

// Order returns keys de-duplicated and sorted into acquisition order.
func Order(keys ...Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	ordered := make([]Key, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })
	return ordered
}

// Locker takes a blocking exclusive lock on one row for the rest of the enclosing atomic unit.
type Locker interface {
	LockRow(ctx context.Context, key Key) error
}

// Scope tracks the keys held by one atomic unit. It is not safe for concurrent use.
type Scope struct {
	held []Key
	set  map[Key]struct{}
}

func NewScope() *Scope {
	return &Scope{set: make(map[Key]struct{})}
}

// Holds reports whether key is already locked in this scope.
func (s *Scope) Holds(key Key) bool {
	_, ok := s.set[key]
	return ok
}

// Held returns the held keys in acquisition order.
func (s *Scope) Held() []Key {
	return append([]Key(nil), s.held...)
}

// Acquire locks every key not yet held, in order, through locker.
func (s *Scope) Acquire(ctx context.Context, locker Locker, keys ...Key) error {
	for _, key := range Order(keys...) {
		if s.Holds(key) {
			continue
		}
		if n := len(s.held); n > 0 && less(key, s.held[n-1]) {
			return fmt.Errorf("%w: %s after %s", ErrOrder, key, s.held[n-1])
		}
		if err := locker.LockRow(ctx, key); err != nil {
			return fmt.Errorf("unable to lock %s: %w", key, err)
		}
		s.held = append(s.held, key)
		s.set[key] = struct{}{}
		zap.L().Debug("Lock acquired", zap.Stringer("key", key))
	}
	return nil
}

// Release forgets every held key and returns them in reverse acquisition order.
// The rows themselves are released by the storage layer when the atomic unit ends.
func (s *Scope) Release() []Key {
	released := make([]Key, 0, len(s.held))
	for i := len(s.held) - 1; i >= 0; i-- {
		released = append(released, s.held[i])
		zap.L().Debug("Lock released", zap.Stringer("key", s.held[i]))
	}
	s.held = nil
	s.set = make(map[Key]struct{})
	return released
}
