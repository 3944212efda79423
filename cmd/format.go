package cmd

import "strconv"

// num renders an optional venue figure; absent values print as "-".
func num(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
