package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

func positionHandler(positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := positions.Find(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		if position.ID == 0 {
			render.Error(w, core.ErrPositionNotFound)
			return
		}

		render.JSON(w, position)
	}
}

func healthHandler(ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := ledger.Health(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, report)
	}
}
