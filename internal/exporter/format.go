package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal
// places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatCount formats an org/incumbent count. Counts arrive as float64 from
// survey parsing but are whole numbers in practice.
func formatCount(f float64) string {
	return fmt.Sprintf("%d", int64(f))
}
