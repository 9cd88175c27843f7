package parkinglots

import (
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
)

const (
	MsgLotNameExists = "A parking lot with this name already exists"
	MsgLotNotFound   = "Parking lot not found"
	MsgLotStatus     = "Status must be AVAILABLE, MAINTENANCE or CLOSED"
)

// LotInput carries the editable fields of a lot form.
type LotInput struct {
	LotName     string
	Location    string
	Description string
	Capacity    int
	Status      enums.LotStatus
}

// Summary aggregates the dashboard counters.
type Summary struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Maintenance int64 `json:"maintenance"`
	Closed      int64 `json:"closed"`
}

// LotDTO is the JSON shape of a lot.
type LotDTO struct {
	ID                  int64           `json:"id"`
	LotName             string          `json:"lot_name"`
	Location            string          `json:"location"`
	Description         *string         `json:"description,omitempty"`
	Capacity            int             `json:"capacity"`
	OccupiedSlots       int             `json:"occupied_slots"`
	AvailableSlots      int             `json:"available_slots"`
	OccupancyPercentage float64         `json:"occupancy_percentage"`
	Status              enums.LotStatus `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func FromModel(p *models.ParkingLot) *LotDTO {
	if p == nil {
		return nil
	}
	return &LotDTO{
		ID:                  p.ID,
		LotName:             p.LotName,
		Location:            p.Location,
		Description:         p.Description,
		Capacity:            p.Capacity,
		OccupiedSlots:       p.OccupiedSlots,
		AvailableSlots:      p.AvailableSlots(),
		OccupancyPercentage: p.OccupancyPercentage(),
		Status:              p.Status,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func FromModels(lots []models.ParkingLot) []LotDTO {
	out := make([]LotDTO, 0, len(lots))
	for i := range lots {
		out = append(out, *FromModel(&lots[i]))
	}
	return out
}
