package handler

import (
	"net/http"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/hc"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/rest"
	"github.com/rs/cors"
)

// Server api server
type Server struct {
	version          string
	poolStore        core.IPoolStore
	positionStore    core.IPositionStore
	transactionStore core.ITransactionStore
	ledger           core.ILedgerService
}

// New new server
func New(
	version string,
	poolStore core.IPoolStore,
	positionStore core.IPositionStore,
	transactionStore core.ITransactionStore,
	ledger core.ILedgerService,
) Server {
	return Server{
		version:          version,
		poolStore:        poolStore,
		positionStore:    positionStore,
		transactionStore: transactionStore,
		ledger:           ledger,
	}
}

// Handler the root handler mounting hc and the rest api
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	mux.Mount("/hc", hc.Handle(s.version, s.poolStore))
	mux.Mount("/api", rest.Handle(s.poolStore, s.positionStore, s.transactionStore, s.ledger))

	return mux
}
