package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/parkinglot-manager/api/validators"
	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
)

const (
	MsgLotCreated       = "Parking lot created successfully!"
	MsgLotUpdated       = "Parking lot updated successfully!"
	MsgLotDeleted       = "Parking lot deleted successfully!"
	MsgOccupancyUpdated = "Occupancy updated successfully!"

	msgLotCreateFailedPre = "Error creating parking lot: "
	msgLotUpdateFailedPre = "Error updating parking lot: "
	msgLotDeleteFailedPre = "Error deleting parking lot: "
	msgOccupancyFailedPre = "Error updating occupancy: "

	lotListPath          = "/lot-manager/lots"
	lotCreatePath        = "/lot-manager/create-lot"
	lotEditPathPrefix    = "/lot-manager/edit-lot/"
	lotDetailsPathPrefix = "/lot-manager/lot-details/"
)

// MutationRecorder counts lot mutations by operation and outcome.
type MutationRecorder interface {
	IncMutation(op, outcome string)
}

// LotPages groups the lot manager handlers.
type LotPages struct {
	Pages
	Lots    parkinglots.Service
	Metrics MutationRecorder
}

func (lp LotPages) record(op, outcome string) {
	if lp.Metrics != nil {
		lp.Metrics.IncMutation(op, outcome)
	}
}

func (lp LotPages) notFound(w http.ResponseWriter, r *http.Request) {
	lp.redirectWithFlash(w, r, lotListPath, flash.Error(parkinglots.MsgLotNotFound))
}

// loadLot resolves the {id} route parameter. It writes the response and
// returns nil when the lot cannot be shown.
func (lp LotPages) loadLot(w http.ResponseWriter, r *http.Request) *models.ParkingLot {
	id, err := validators.PathID(r, "id")
	if err != nil {
		lp.notFound(w, r)
		return nil
	}
	lot, err := lp.Lots.GetParkingLotByID(r.Context(), id)
	if err != nil {
		lp.fail(w, r, "lots.load_failed", err)
		return nil
	}
	if lot == nil {
		lp.notFound(w, r)
		return nil
	}
	return lot
}

func (lp LotPages) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lots, err := lp.Lots.GetAllParkingLots(ctx)
	if err != nil {
		lp.fail(w, r, "lots.list_failed", err)
		return
	}
	summary, err := lp.Lots.Summary(ctx)
	if err != nil {
		lp.fail(w, r, "lots.summary_failed", err)
		return
	}
	current := ""
	if principal := principalFrom(ctx); principal != nil {
		current = principal.Username
	}
	lp.Views.Render(w, r, http.StatusOK, views.PageLotDashboard, views.Page{
		Title: "Lot manager dashboard",
		Data: map[string]any{
			"parkingLots":     lots,
			"totalLots":       summary.Total,
			"availableLots":   summary.Available,
			"maintenanceLots": summary.Maintenance,
			"closedLots":      summary.Closed,
			"currentUser":     current,
		},
	})
}

func (lp LotPages) List(w http.ResponseWriter, r *http.Request) {
	lots, err := lp.Lots.GetAllParkingLots(r.Context())
	if err != nil {
		lp.fail(w, r, "lots.list_failed", err)
		return
	}
	lp.Views.Render(w, r, http.StatusOK, views.PageLotList, views.Page{
		Title: "Parking lots",
		Data:  map[string]any{"parkingLots": lots},
	})
}

func (lp LotPages) renderForm(w http.ResponseWriter, r *http.Request, status int, title, action string, form validators.LotForm, errs map[string]string) {
	lp.Views.Render(w, r, status, views.PageLotForm, views.Page{
		Title:  title,
		Form:   form,
		Errors: errs,
		Data:   map[string]any{"action": action},
	})
}

func (lp LotPages) CreateForm(w http.ResponseWriter, r *http.Request) {
	form := validators.LotForm{Status: enums.LotStatusAvailable.String()}
	lp.renderForm(w, r, http.StatusOK, "Create parking lot", lotCreatePath, form, nil)
}

// Create adds a lot. A duplicate name is reported on the lotName field.
func (lp LotPages) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form validators.LotForm
	fieldErrs, err := validators.DecodeForm(r, &form)
	if err != nil {
		lp.redirectWithFlash(w, r, lotCreatePath, flash.Error(msgLotCreateFailedPre+pkgerrors.UserMessage(err)))
		return
	}
	if len(fieldErrs) == 0 {
		exists, err := lp.Lots.ExistsByLotName(ctx, form.LotName)
		if err != nil {
			lp.record("create", "error")
			lp.log().Error(ctx, "lots.create_failed", err)
			lp.redirectWithFlash(w, r, lotCreatePath, flash.Error(msgLotCreateFailedPre+pkgerrors.UserMessage(err)))
			return
		}
		if exists {
			fieldErrs = fieldErrs.Add("lotName", parkinglots.MsgLotNameExists)
		}
	}
	if len(fieldErrs) > 0 {
		lp.record("create", "invalid")
		lp.renderForm(w, r, http.StatusUnprocessableEntity, "Create parking lot", lotCreatePath, form, fieldErrs)
		return
	}

	lot, err := lp.Lots.CreateParkingLot(ctx, lotInput(form))
	if err != nil {
		if field := conflictField(err); field != "" {
			lp.record("create", "invalid")
			lp.renderForm(w, r, http.StatusUnprocessableEntity, "Create parking lot", lotCreatePath, form,
				map[string]string{field: pkgerrors.UserMessage(err)})
			return
		}
		lp.record("create", "error")
		lp.log().Error(ctx, "lots.create_failed", err)
		lp.redirectWithFlash(w, r, lotCreatePath, flash.Error(msgLotCreateFailedPre+pkgerrors.UserMessage(err)))
		return
	}

	lp.record("create", "success")
	lp.log().Info(lp.log().WithField(ctx, "lot_id", lot.ID), "lots.created")
	lp.redirectWithFlash(w, r, lotListPath, flash.Success(MsgLotCreated))
}

func (lp LotPages) EditForm(w http.ResponseWriter, r *http.Request) {
	lot := lp.loadLot(w, r)
	if lot == nil {
		return
	}
	form := validators.LotForm{
		LotName:     lot.LotName,
		Location:    lot.Location,
		Description: lot.DescriptionText(),
		Capacity:    lot.Capacity,
		Status:      lot.Status.String(),
	}
	lp.renderForm(w, r, http.StatusOK, "Edit parking lot", editPath(lot.ID), form, nil)
}

// Update rewrites the editable fields of a lot. The name may only collide
// with the lot itself.
func (lp LotPages) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.PathID(r, "id")
	if err != nil {
		lp.notFound(w, r)
		return
	}
	action := editPath(id)

	var form validators.LotForm
	fieldErrs, err := validators.DecodeForm(r, &form)
	if err != nil {
		lp.redirectWithFlash(w, r, action, flash.Error(msgLotUpdateFailedPre+pkgerrors.UserMessage(err)))
		return
	}
	if len(fieldErrs) == 0 {
		existing, err := lp.Lots.GetParkingLotByName(ctx, form.LotName)
		if err != nil {
			lp.record("update", "error")
			lp.log().Error(ctx, "lots.update_failed", err)
			lp.redirectWithFlash(w, r, action, flash.Error(msgLotUpdateFailedPre+pkgerrors.UserMessage(err)))
			return
		}
		if existing != nil && existing.ID != id {
			fieldErrs = fieldErrs.Add("lotName", parkinglots.MsgLotNameExists)
		}
	}
	if len(fieldErrs) > 0 {
		lp.record("update", "invalid")
		lp.renderForm(w, r, http.StatusUnprocessableEntity, "Edit parking lot", action, form, fieldErrs)
		return
	}

	lot, err := lp.Lots.UpdateParkingLot(ctx, id, lotInput(form))
	switch {
	case err != nil && conflictField(err) != "":
		lp.record("update", "invalid")
		lp.renderForm(w, r, http.StatusUnprocessableEntity, "Edit parking lot", action, form,
			map[string]string{conflictField(err): pkgerrors.UserMessage(err)})
	case err != nil:
		lp.record("update", "error")
		lp.log().Error(ctx, "lots.update_failed", err)
		lp.redirectWithFlash(w, r, action, flash.Error(msgLotUpdateFailedPre+pkgerrors.UserMessage(err)))
	case lot == nil:
		lp.record("update", "not_found")
		lp.notFound(w, r)
	default:
		lp.record("update", "success")
		lp.redirectWithFlash(w, r, lotListPath, flash.Success(MsgLotUpdated))
	}
}

func (lp LotPages) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	lot := lp.loadLot(w, r)
	if lot == nil {
		return
	}
	lp.Views.Render(w, r, http.StatusOK, views.PageLotDeleteConfirm, views.Page{
		Title: "Delete parking lot",
		Data:  map[string]any{"parkingLot": lot},
	})
}

func (lp LotPages) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.PathID(r, "id")
	if err != nil {
		lp.notFound(w, r)
		return
	}
	removed, err := lp.Lots.DeleteParkingLot(ctx, id)
	switch {
	case err != nil:
		lp.record("delete", "error")
		lp.log().Error(ctx, "lots.delete_failed", err)
		lp.redirectWithFlash(w, r, lotListPath, flash.Error(msgLotDeleteFailedPre+pkgerrors.UserMessage(err)))
	case !removed:
		lp.record("delete", "not_found")
		lp.notFound(w, r)
	default:
		lp.record("delete", "success")
		lp.log().Info(lp.log().WithField(ctx, "lot_id", id), "lots.deleted")
		lp.redirectWithFlash(w, r, lotListPath, flash.Success(MsgLotDeleted))
	}
}

func (lp LotPages) Details(w http.ResponseWriter, r *http.Request) {
	lot := lp.loadLot(w, r)
	if lot == nil {
		return
	}
	lp.Views.Render(w, r, http.StatusOK, views.PageLotDetails, views.Page{
		Title: lot.LotName,
		Data:  map[string]any{"parkingLot": lot},
	})
}

// UpdateOccupancy sets the occupied slot count. The count is not capped at
// capacity; only negative values are rejected.
func (lp LotPages) UpdateOccupancy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := validators.PathID(r, "id")
	if err != nil {
		lp.notFound(w, r)
		return
	}
	back := detailsPath(id)

	var form validators.OccupancyForm
	fieldErrs, err := validators.DecodeForm(r, &form)
	if err != nil {
		lp.redirectWithFlash(w, r, back, flash.Error(msgOccupancyFailedPre+pkgerrors.UserMessage(err)))
		return
	}
	if msg := fieldErrs.Get("occupiedSlots"); msg != "" {
		lp.record("occupancy", "invalid")
		lp.redirectWithFlash(w, r, back, flash.Error(msg))
		return
	}

	lot, err := lp.Lots.UpdateOccupancy(ctx, id, form.OccupiedSlots)
	switch {
	case err != nil:
		lp.record("occupancy", "error")
		lp.log().Error(ctx, "lots.occupancy_failed", err)
		lp.redirectWithFlash(w, r, back, flash.Error(msgOccupancyFailedPre+pkgerrors.UserMessage(err)))
	case lot == nil:
		lp.record("occupancy", "not_found")
		lp.notFound(w, r)
	default:
		lp.record("occupancy", "success")
		lp.redirectWithFlash(w, r, back, flash.Success(MsgOccupancyUpdated))
	}
}

func lotInput(form validators.LotForm) parkinglots.LotInput {
	return parkinglots.LotInput{
		LotName:     form.LotName,
		Location:    form.Location,
		Description: form.Description,
		Capacity:    form.Capacity,
		Status:      enums.LotStatus(form.Status),
	}
}

func editPath(id int64) string {
	return lotEditPathPrefix + strconv.FormatInt(id, 10)
}

func detailsPath(id int64) string {
	return lotDetailsPathPrefix + strconv.FormatInt(id, 10)
}
