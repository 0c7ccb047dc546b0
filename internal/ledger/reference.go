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

package ledger

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"wallet-ledger-go/internal/store"
)

const (
	referenceLength   = 10
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxReferenceAttempts = 32
	maxOpenAttempts      = 3
)

var errReferenceExhausted = errors.New("unable to find an unused account reference")

func newReference() (string, error) {
	size := big.NewInt(int64(len(referenceAlphabet)))
	buf := make([]byte, referenceLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("unable to read random source: %w", err)
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// uniqueReference draws references until one is unused by every payment and wallet account.
func uniqueReference(ctx context.Context, r store.Reader) (string, error) {
	for range maxReferenceAttempts {
		ref, err := newReference()
		if err != nil {
			return "", err
		}
		exists, err := r.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errReferenceExhausted
}
