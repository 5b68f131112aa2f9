package hc

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

// Handle health check of the api server, ready once pools are initialised
func Handle(version string, pools core.IPoolStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(version, pools))
	return r
}

func handle(version string, pools core.IPoolStore) http.HandlerFunc {
	started := time.Now()

	return func(w http.ResponseWriter, r *http.Request) {
		all, err := pools.All(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"uptime":  time.Since(started).Truncate(time.Millisecond).String(),
			"version": version,
			"pools":   len(all),
			"ready":   len(all) == len(core.AssetKinds),
		})
	}
}
