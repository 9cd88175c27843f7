package models

import (
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
)

// ParkingLot is a managed parking facility. Mutations go through WithDetails
// and WithOccupancy, which return a new value with UpdatedAt advanced.
type ParkingLot struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	LotName       string          `gorm:"column:lot_name;not null;uniqueIndex:idx_parking_lots_lot_name"`
	Location      string          `gorm:"column:location;not null"`
	Description   *string         `gorm:"column:description;type:text"`
	Capacity      int             `gorm:"column:capacity;not null"`
	OccupiedSlots int             `gorm:"column:occupied_slots;not null;default:0"`
	Status        enums.LotStatus `gorm:"column:status;type:varchar(20);not null;default:'AVAILABLE';index:idx_parking_lots_status"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime:false;not null"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime:false;not null"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

// NewParkingLot builds an AVAILABLE lot with no occupied slots.
func NewParkingLot(name, location string, description *string, capacity int, now time.Time) ParkingLot {
	now = now.UTC()
	return ParkingLot{
		LotName:     name,
		Location:    location,
		Description: description,
		Capacity:    capacity,
		Status:      enums.LotStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AvailableSlots may be negative when the lot is over-occupied.
func (p ParkingLot) AvailableSlots() int {
	return p.Capacity - p.OccupiedSlots
}

// OccupancyPercentage is 0 for a lot without capacity.
func (p ParkingLot) OccupancyPercentage() float64 {
	if p.Capacity == 0 {
		return 0
	}
	return float64(p.OccupiedSlots) / float64(p.Capacity) * 100
}

func (p ParkingLot) IsActive() bool {
	return p.Status == enums.LotStatusAvailable
}

// DescriptionText returns the description or "".
func (p ParkingLot) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// WithDetails replaces the editable fields. OccupiedSlots and CreatedAt carry over.
func (p ParkingLot) WithDetails(name, location string, description *string, capacity int, status enums.LotStatus, now time.Time) ParkingLot {
	next := p
	next.LotName = name
	next.Location = location
	next.Description = description
	next.Capacity = capacity
	next.Status = status
	next.UpdatedAt = advance(p.UpdatedAt, now)
	return next
}

// WithOccupancy sets the occupied slot count.
func (p ParkingLot) WithOccupancy(occupied int, now time.Time) ParkingLot {
	next := p
	next.OccupiedSlots = occupied
	next.UpdatedAt = advance(p.UpdatedAt, now)
	return next
}

// Touched advances UpdatedAt without changing anything else.
func (p ParkingLot) Touched(now time.Time) ParkingLot {
	next := p
	next.UpdatedAt = advance(p.UpdatedAt, now)
	return next
}

func advance(previous, now time.Time) time.Time {
	now = now.UTC()
	if now.Before(previous) {
		return previous
	}
	return now
}
