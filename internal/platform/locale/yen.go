// Package locale renders amounts the way the shop's Japanese UI shows them.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// Yen formats amount with Japanese digit grouping, e.g. 4750 -> "4,750円"
func Yen(amount int64) string {
	return printer.Sprintf("%d円", amount)
}

// Number formats n with Japanese digit grouping and no unit
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}
