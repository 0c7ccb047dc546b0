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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/transport"

	"go.uber.org/zap"
)

// settlement is what a gateway status endpoint answers for one reference.
type settlement struct {
	Ref    string `json:"ref"`
	Status string `json:"status"`
}

// HTTPVerifier asks a gateway status endpoint about a reference:
// GET {endpoint}?gateway={name}&ref={ref}. A "paid" status verifies the deposit and a 404 means
// the gateway has not seen it yet.
type HTTPVerifier struct {
	endpoint string
	gateway  string
	client   *http.Client
}

func NewHTTPVerifier(endpoint, gatewayName string, timeout time.Duration) (*HTTPVerifier, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid gateway endpoint %q: %w", endpoint, err)
	}
	client, err := transport.NewHttpClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create gateway http client: %w", err)
	}
	return &HTTPVerifier{endpoint: endpoint, gateway: gatewayName, client: client}, nil
}

func (v *HTTPVerifier) Verify(ctx context.Context, ref string) (bool, error) {
	query := url.Values{}
	query.Set("gateway", v.gateway)
	query.Set("ref", ref)

	sep := "?"
	if strings.Contains(v.endpoint, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+sep+query.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("unable to build verification request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ledger.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("%w: %s answered %s", ledger.ErrGatewayUnreachable, v.gateway, resp.Status)
	}

	var result settlement
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("%w: unable to decode %s answer: %v", ledger.ErrGatewayUnreachable, v.gateway, err)
	}
	if result.Ref != "" && result.Ref != ref {
		return false, fmt.Errorf("%w: %s answered for %q instead of %q", ledger.ErrGatewayUnreachable, v.gateway, result.Ref, ref)
	}

	zap.L().Debug("Gateway settlement status", zap.String("gateway", v.gateway), zap.String("ref", ref), zap.String("status", result.Status))
	return strings.EqualFold(result.Status, "paid"), nil
}
