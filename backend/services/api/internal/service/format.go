package service

import "fmt"

// FormatDuration renders minutes as "Xh Ym", or "Ym" under an hour. Non-positive input yields "0m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
