package controllers

import (
	"net/http"

	"github.com/angelmondragon/parkinglot-manager/api/responses"
	"github.com/angelmondragon/parkinglot-manager/api/validators"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

// APIListLots returns the lots currently accepting cars.
func APIListLots(svc parkinglots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lots, err := svc.GetAvailableParkingLots(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, parkinglots.FromModels(lots))
	}
}

func APILotSummary(svc parkinglots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func APIGetLot(svc parkinglots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lot, err := svc.GetParkingLotByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if lot == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, parkinglots.MsgLotNotFound))
			return
		}
		responses.WriteSuccess(w, parkinglots.FromModel(lot))
	}
}
