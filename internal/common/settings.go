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

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// SettingsFile is the layout of the ledger settings YAML. Amounts are strings so decimals survive
// the round trip untouched.
type SettingsFile struct {
	Payments struct {
		Min string `yaml:"min"`
		Max string `yaml:"max"`
	} `yaml:"payments"`
	Currencies []money.Currency  `yaml:"currencies"`
	Rates      map[string]string `yaml:"rates"`
	Limits     map[string]string `yaml:"limits"`
}

// LoadSettings reads the settings file, registers the extra currencies it declares and returns the
// business settings.
func LoadSettings(settingsFile string) (*models.LedgerSettings, error) {
	var settingsPath string
	if filepath.IsAbs(settingsFile) {
		settingsPath = settingsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		settingsPath = filepath.Join(wd, settingsFile)
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", settingsFile, err)
	}

	var file SettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", settingsFile, err)
	}

	for i, cur := range file.Currencies {
		if err := money.Register(cur); err != nil {
			return nil, fmt.Errorf("currency at index %d: %w", i, err)
		}
	}

	settings := &models.LedgerSettings{}
	if settings.MinPayment, err = parseAmount("payments.min", file.Payments.Min); err != nil {
		return nil, err
	}
	if settings.MaxPayment, err = parseAmount("payments.max", file.Payments.Max); err != nil {
		return nil, err
	}
	if settings.MinPayment.GreaterThan(settings.MaxPayment) {
		return nil, fmt.Errorf("payments.min %s is above payments.max %s", settings.MinPayment, settings.MaxPayment)
	}

	if settings.Rates, err = parseAmounts("rates", file.Rates, true); err != nil {
		return nil, err
	}
	if settings.Limits, err = parseAmounts("limits", file.Limits, false); err != nil {
		return nil, err
	}
	return settings, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive, got %s", field, d)
	}
	return d, nil
}

func parseAmounts(section string, values map[string]string, upperKeys bool) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(values))
	for key, value := range values {
		d, err := parseAmount(section+"."+key, value)
		if err != nil {
			return nil, err
		}
		if upperKeys {
			key = strings.ToUpper(key)
		}
		out[key] = d
	}
	return out, nil
}
