package extract

import (
	"strconv"
	"strings"
)

// durationMinutes converts an ISO 8601 duration string (the form schema.org
// time properties use, e.g. "PT1H30M", "PT45M", "P0DT2H") into whole minutes.
// Seconds round down. Unparseable or negative input yields 0; cooking times
// are advisory, not worth an error path.
func durationMinutes(iso string) int {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	if iso == "" || iso[0] != 'P' {
		return 0
	}

	var minutes int
	inTime := false
	num := ""

	for _, c := range iso[1:] {
		switch {
		case c == 'T':
			inTime = true
			num = ""
		case c >= '0' && c <= '9' || c == '.':
			num += string(c)
		default:
			n, err := strconv.ParseFloat(num, 64)
			num = ""
			if err != nil {
				return 0
			}
			switch {
			case c == 'D' && !inTime:
				minutes += int(n * 24 * 60)
			case c == 'H' && inTime:
				minutes += int(n * 60)
			case c == 'M' && inTime:
				minutes += int(n)
			case c == 'S' && inTime:
				minutes += int(n) / 60
			case c == 'W' && !inTime:
				minutes += int(n * 7 * 24 * 60)
			case (c == 'Y' || c == 'M') && !inTime:
				// Years and calendar months in a cook time are
				// markup mistakes; ignore the component.
			default:
				return 0
			}
		}
	}

	if minutes < 0 {
		return 0
	}
	return minutes
}
