package enums

import (
	"fmt"
	"strings"
)

// LotStatus is the operational state of a parking lot.
type LotStatus string

const (
	LotStatusAvailable   LotStatus = "AVAILABLE"
	LotStatusMaintenance LotStatus = "MAINTENANCE"
	LotStatusClosed      LotStatus = "CLOSED"
)

var validLotStatuses = []LotStatus{
	LotStatusAvailable,
	LotStatusMaintenance,
	LotStatusClosed,
}

// LotStatuses returns every known status in display order.
func LotStatuses() []LotStatus {
	return append([]LotStatus(nil), validLotStatuses...)
}

func (s LotStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LotStatus.
func (s LotStatus) IsValid() bool {
	for _, candidate := range validLotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLotStatus converts raw input into a LotStatus. Matching ignores case.
func ParseLotStatus(value string) (LotStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validLotStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot status %q", value)
}
