package system

import "strconv"

var byteUnits = []struct {
	shift uint8
	name  string
}{
	{40, "TiB"},
	{30, "GiB"},
	{20, "MiB"},
	{10, "KiB"},
}

// scaled renders n / 2^shift with one rounded decimal using integer math only
func scaled(n uint64, shift uint8, name string) string {
	whole := n >> shift
	rest := n & (1<<shift - 1)
	tenth := (rest*10 + 1<<(shift-1)) >> shift
	if tenth == 10 {
		whole++
		tenth = 0
	}
	return strconv.FormatUint(whole, 10) + "." + strconv.FormatUint(tenth, 10) + " " + name
}

// ProperUnit converts bytes to human readable format
func ProperUnit(n uint64) string {
	for _, u := range byteUnits {
		if n >= 1<<u.shift {
			return scaled(n, u.shift, u.name)
		}
	}
	return strconv.FormatUint(n, 10) + " B"
}

// Float2string converts float to string with specified precision
func Float2string(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}
