package invoice

import (
	"strconv"
	"strings"
)

// ParseAmount parses a currency amount as it appears on an invoice:
// an optional symbol, comma thousands separators, two decimals
// ("€ 1,250.00" -> 1250.00). A failed parse skips the calling strategy,
// never the whole document.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, sym := range []string{"€", "$", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
