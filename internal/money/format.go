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

package money

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders the amount for display, e.g. "$1,234.56" or "-₿0.00120000".
func (m Money) Format() string {
	fixed := m.Value().Abs().StringFixed(m.currency.Precision)

	whole, fraction, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if m.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(m.currency.Symbol)
	b.WriteString(groupDigits(whole))
	if fraction != "" {
		b.WriteByte('.')
		b.WriteString(fraction)
	}
	return b.String()
}

// groupDigits inserts thousands separators into a string of decimal digits.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var n uint64
	for _, r := range digits {
		n = n*10 + uint64(r-'0')
	}
	return printer.Sprintf("%d", n)
}
