package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/param"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

func transactionsHandler(transactions core.ITransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID string `json:"user_id"`
			Offset int64  `json:"offset"`
			Limit  int    `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 500
		}

		list, err := transactions.List(r.Context(), params.UserID, params.Offset, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func transactionHandler(transactions core.ITransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := transactions.FindByTraceID(r.Context(), chi.URLParam(r, "trace_id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		if t.ID == 0 {
			render.NotFoundRequest(w, errNotFound)
			return
		}

		render.JSON(w, t)
	}
}
