package parkinglots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
)

// Service manages parking lots. Update operations return nil when the lot
// does not exist.
type Service interface {
	GetAllParkingLots(ctx context.Context) ([]models.ParkingLot, error)
	GetAvailableParkingLots(ctx context.Context) ([]models.ParkingLot, error)
	GetParkingLotByID(ctx context.Context, id int64) (*models.ParkingLot, error)
	GetParkingLotByName(ctx context.Context, name string) (*models.ParkingLot, error)
	GetParkingLotsByLocation(ctx context.Context, location string) ([]models.ParkingLot, error)
	GetParkingLotsByStatus(ctx context.Context, status enums.LotStatus) ([]models.ParkingLot, error)
	ExistsByLotName(ctx context.Context, name string) (bool, error)
	SaveParkingLot(ctx context.Context, lot models.ParkingLot) (*models.ParkingLot, error)
	CreateParkingLot(ctx context.Context, input LotInput) (*models.ParkingLot, error)
	UpdateParkingLot(ctx context.Context, id int64, input LotInput) (*models.ParkingLot, error)
	UpdateOccupancy(ctx context.Context, id int64, occupied int) (*models.ParkingLot, error)
	DeleteParkingLot(ctx context.Context, id int64) (bool, error)
	GetTotalLots(ctx context.Context) (int64, error)
	GetAvailableLotsCount(ctx context.Context) (int64, error)
	GetMaintenanceLotsCount(ctx context.Context) (int64, error)
	GetClosedLotsCount(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (Summary, error)
}

type lotRepository interface {
	Create(ctx context.Context, lot *models.ParkingLot) error
	Save(ctx context.Context, lot *models.ParkingLot) error
	Update(ctx context.Context, lot *models.ParkingLot) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.ParkingLot, error)
	FindByLotName(ctx context.Context, name string) (*models.ParkingLot, error)
	ExistsByLotName(ctx context.Context, name string) (bool, error)
	FindByLocation(ctx context.Context, location string) ([]models.ParkingLot, error)
	FindByStatus(ctx context.Context, status enums.LotStatus) ([]models.ParkingLot, error)
	FindAllAvailable(ctx context.Context) ([]models.ParkingLot, error)
	FindAllOrderByCreatedAtDesc(ctx context.Context) ([]models.ParkingLot, error)
	CountByStatus(ctx context.Context, status enums.LotStatus) (int64, error)
	CountGroupedByStatus(ctx context.Context) (map[enums.LotStatus]int64, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// ServiceParams bundles the dependencies required to build a lot service.
type ServiceParams struct {
	Repo lotRepository
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo lotRepository
	now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("parking lot repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) GetAllParkingLots(ctx context.Context) ([]models.ParkingLot, error) {
	lots, err := s.repo.FindAllOrderByCreatedAtDesc(ctx)
	return lots, internal(err, "list lots")
}

func (s *service) GetAvailableParkingLots(ctx context.Context) ([]models.ParkingLot, error) {
	lots, err := s.repo.FindAllAvailable(ctx)
	return lots, internal(err, "list available lots")
}

func (s *service) GetParkingLotByID(ctx context.Context, id int64) (*models.ParkingLot, error) {
	lot, err := s.repo.FindByID(ctx, id)
	return lot, internal(err, "load lot")
}

func (s *service) GetParkingLotByName(ctx context.Context, name string) (*models.ParkingLot, error) {
	lot, err := s.repo.FindByLotName(ctx, strings.TrimSpace(name))
	return lot, internal(err, "load lot by name")
}

func (s *service) GetParkingLotsByLocation(ctx context.Context, location string) ([]models.ParkingLot, error) {
	lots, err := s.repo.FindByLocation(ctx, location)
	return lots, internal(err, "list lots by location")
}

func (s *service) GetParkingLotsByStatus(ctx context.Context, status enums.LotStatus) ([]models.ParkingLot, error) {
	lots, err := s.repo.FindByStatus(ctx, status)
	return lots, internal(err, "list lots by status")
}

func (s *service) ExistsByLotName(ctx context.Context, name string) (bool, error) {
	ok, err := s.repo.ExistsByLotName(ctx, strings.TrimSpace(name))
	return ok, internal(err, "check lot name")
}

// SaveParkingLot inserts a lot without an id and otherwise writes it back,
// advancing UpdatedAt.
func (s *service) SaveParkingLot(ctx context.Context, lot models.ParkingLot) (*models.ParkingLot, error) {
	now := s.now()
	if lot.ID == 0 {
		if lot.CreatedAt.IsZero() {
			lot.CreatedAt = now.UTC()
		}
		lot = lot.Touched(now)
		if !lot.Status.IsValid() {
			lot.Status = enums.LotStatusAvailable
		}
		if err := s.repo.Create(ctx, &lot); err != nil {
			return nil, internal(err, "create lot")
		}
		return &lot, nil
	}

	lot = lot.Touched(now)
	if err := s.repo.Save(ctx, &lot); err != nil {
		return nil, internal(err, "save lot")
	}
	return &lot, nil
}

func (s *service) CreateParkingLot(ctx context.Context, input LotInput) (*models.ParkingLot, error) {
	lot := models.NewParkingLot(
		strings.TrimSpace(input.LotName),
		strings.TrimSpace(input.Location),
		optionalString(input.Description),
		input.Capacity,
		s.now(),
	)
	if input.Status.IsValid() {
		lot.Status = input.Status
	}
	if err := s.repo.Create(ctx, &lot); err != nil {
		return nil, internal(err, "create lot")
	}
	return &lot, nil
}

func (s *service) UpdateParkingLot(ctx context.Context, id int64, input LotInput) (*models.ParkingLot, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, internal(err, "load lot")
	}
	if current == nil {
		return nil, nil
	}

	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgLotStatus).
			WithDetails(map[string]string{"field": "status"})
	}
	next := current.WithDetails(
		strings.TrimSpace(input.LotName),
		strings.TrimSpace(input.Location),
		optionalString(input.Description),
		input.Capacity,
		input.Status,
		s.now(),
	)
	return s.write(ctx, next, "update lot")
}

func (s *service) UpdateOccupancy(ctx context.Context, id int64, occupied int) (*models.ParkingLot, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, internal(err, "load lot")
	}
	if current == nil {
		return nil, nil
	}
	return s.write(ctx, current.WithOccupancy(occupied, s.now()), "update occupancy")
}

func (s *service) write(ctx context.Context, lot models.ParkingLot, op string) (*models.ParkingLot, error) {
	found, err := s.repo.Update(ctx, &lot)
	if err != nil {
		return nil, internal(err, op)
	}
	if !found {
		return nil, nil
	}
	return &lot, nil
}

func (s *service) DeleteParkingLot(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.DeleteByID(ctx, id)
	return removed, internal(err, "delete lot")
}

func (s *service) GetTotalLots(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	return n, internal(err, "count lots")
}

func (s *service) GetAvailableLotsCount(ctx context.Context) (int64, error) {
	return s.countByStatus(ctx, enums.LotStatusAvailable)
}

func (s *service) GetMaintenanceLotsCount(ctx context.Context) (int64, error) {
	return s.countByStatus(ctx, enums.LotStatusMaintenance)
}

func (s *service) GetClosedLotsCount(ctx context.Context) (int64, error) {
	return s.countByStatus(ctx, enums.LotStatusClosed)
}

func (s *service) countByStatus(ctx context.Context, status enums.LotStatus) (int64, error) {
	n, err := s.repo.CountByStatus(ctx, status)
	return n, internal(err, "count lots by status")
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	byStatus, err := s.repo.CountGroupedByStatus(ctx)
	if err != nil {
		return Summary{}, internal(err, "summarize lots")
	}
	summary := Summary{
		Available:   byStatus[enums.LotStatusAvailable],
		Maintenance: byStatus[enums.LotStatusMaintenance],
		Closed:      byStatus[enums.LotStatusClosed],
	}
	for _, n := range byStatus {
		summary.Total += n
	}
	return summary, nil
}

// internal wraps untyped errors as CodeInternal; typed ones pass through.
func internal(err error, msg string) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
