package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// StringToUint converts a decimal form value to uint, returning 0 and false
// when it is not a positive integer.
func StringToUint(s string) (uint, bool) {
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil || i == 0 {
		return 0, false
	}
	return uint(i), true
}
