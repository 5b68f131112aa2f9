package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

func poolsHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := pools.All(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, all)
	}
}

func poolHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, err := pools.FindByAssetID(r.Context(), chi.URLParam(r, "asset_id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pool)
	}
}
