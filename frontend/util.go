package frontend

import (
	"strconv"
)

// toOrdinal renders 1 as "1st", 2 as "2nd", 11 as "11th" and so on
func toOrdinal(n int) string {
	suffix := "th"

	if teen := n % 100; teen < 11 || teen > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}

	return strconv.Itoa(n) + suffix
}
