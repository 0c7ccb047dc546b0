package common

import (
	"fmt"
	"strings"

	"wallet-ledger-go/internal/models"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// ShortId trims an id for display.
func ShortId(id string) string {
	if id == "" {
		return "none"
	}
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

// BalanceRow renders one account line of a balance report.
func BalanceRow(label, reference string, b models.Balances) string {
	row := fmt.Sprintf("%-5s %-10s balance %18s  available %18s", label, reference, b.Balance.Format(), b.Available.Format())
	if b.BalanceOnTrade.IsPositive() {
		row += fmt.Sprintf("  on trade %s", b.BalanceOnTrade.Format())
	}
	if b.PendingReceiveCount > 0 {
		row += fmt.Sprintf("  pending %s (%d)", b.TotalPendingReceive.Format(), b.PendingReceiveCount)
	}
	return row
}
