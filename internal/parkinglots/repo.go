package parkinglots

import (
	"context"

	"github.com/angelmondragon/parkinglot-manager/internal/repo"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"gorm.io/gorm"
)

// Repository persists parking lots. Lookups return (nil, nil) when absent.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts lot and fills in its id.
func (r *Repository) Create(ctx context.Context, lot *models.ParkingLot) error {
	if err := r.DB(ctx).Create(lot).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Save writes every column of lot.
func (r *Repository) Save(ctx context.Context, lot *models.ParkingLot) error {
	if err := r.DB(ctx).Save(lot).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Update overwrites an existing row and reports whether it matched. Unlike
// Save it never inserts a lot that was deleted in the meantime.
func (r *Repository) Update(ctx context.Context, lot *models.ParkingLot) (bool, error) {
	res := r.DB(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ?", lot.ID).
		Select("lot_name", "location", "description", "capacity", "occupied_slots", "status", "updated_at").
		Updates(lot)
	if res.Error != nil {
		return false, translateWriteError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.ParkingLot, error) {
	return repo.FirstOrNil[models.ParkingLot](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) FindByLotName(ctx context.Context, name string) (*models.ParkingLot, error) {
	return repo.FirstOrNil[models.ParkingLot](r.DB(ctx).Where("lot_name = ?", name))
}

func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return repo.Exists(r.DB(ctx).Where("id = ?", id), &models.ParkingLot{})
}

func (r *Repository) ExistsByLotName(ctx context.Context, name string) (bool, error) {
	return repo.Exists(r.DB(ctx).Where("lot_name = ?", name), &models.ParkingLot{})
}

func (r *Repository) FindByLocation(ctx context.Context, location string) ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	err := r.DB(ctx).Where("location = ?", location).Order("lot_name ASC").Find(&lots).Error
	return lots, err
}

func (r *Repository) FindByStatus(ctx context.Context, status enums.LotStatus) ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	err := r.DB(ctx).Where("status = ?", status).Order("lot_name ASC").Find(&lots).Error
	return lots, err
}

// FindAllAvailable lists AVAILABLE lots by name.
func (r *Repository) FindAllAvailable(ctx context.Context) ([]models.ParkingLot, error) {
	return r.FindByStatus(ctx, enums.LotStatusAvailable)
}

// FindAllOrderByCreatedAtDesc lists every lot, newest first.
func (r *Repository) FindAllOrderByCreatedAtDesc(ctx context.Context) ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&lots).Error
	return lots, err
}

func (r *Repository) CountByStatus(ctx context.Context, status enums.LotStatus) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ParkingLot{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ParkingLot{}).Count(&count).Error
	return count, err
}

// CountGroupedByStatus returns per-status counts in one query.
func (r *Repository) CountGroupedByStatus(ctx context.Context) (map[enums.LotStatus]int64, error) {
	var rows []struct {
		Status enums.LotStatus
		Total  int64
	}
	err := r.DB(ctx).
		Model(&models.ParkingLot{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.LotStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// DeleteByID removes the lot in a single statement and reports whether a row went away.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.ParkingLot{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func translateWriteError(err error) error {
	if db.IsUniqueViolation(err, "lot_name") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, MsgLotNameExists).WithDetails(map[string]string{"field": "lotName"})
	}
	return err
}
