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

package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"wallet-ledger-go/internal/ledger"
)

// Verifier confirms settlement of a deposit at one payment gateway.
type Verifier interface {
	Verify(ctx context.Context, ref string) (bool, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, ref string) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, ref string) (bool, error) {
	return f(ctx, ref)
}

// Registry routes verification to the verifier registered for the gateway name. Names are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[string]Verifier
	fallback  Verifier
}

// Compile-time check: *Registry must satisfy ledger.GatewayVerifier.
var _ ledger.GatewayVerifier = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[string]Verifier)}
}

func (r *Registry) Register(name string, v Verifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[strings.ToLower(name)] = v
}

// SetFallback sets the verifier used for gateways without their own.
func (r *Registry) SetFallback(v Verifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = v
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.verifiers))
	for name := range r.verifiers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) Verify(ctx context.Context, gatewayName, ref string) (bool, error) {
	r.mu.RLock()
	v, ok := r.verifiers[strings.ToLower(gatewayName)]
	if !ok {
		v = r.fallback
	}
	r.mu.RUnlock()

	if v == nil {
		return false, fmt.Errorf("%w: no verifier for gateway %q", ledger.ErrGatewayUnreachable, gatewayName)
	}
	return v.Verify(ctx, ref)
}
