package fu

import "strings"

/*
Fnzs returns the first non-blank string or empty string if all of them are blank
*/
func Fnzs(a ...string) string {
	for _, x := range a {
		if strings.TrimSpace(x) != "" {
			return x
		}
	}
	return ""
}
