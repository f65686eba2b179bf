// Package marker encodes the dedup marker embedded in mirrored event
// descriptions. The marker is the only record that a TruckersMP event has
// already been mirrored, so any change to its format orphans existing events.
package marker

import (
	"fmt"
	"strings"
)

// Format returns the marker substring for a TruckersMP event id.
func Format(id uint64) string {
	return fmt.Sprintf("### %d ###", id)
}

// Contains reports whether description carries the marker for id.
func Contains(description string, id uint64) bool {
	return strings.Contains(description, Format(id))
}
