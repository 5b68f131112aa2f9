package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

// Handle handle rest api request
func Handle(
	poolStore core.IPoolStore,
	positionStore core.IPositionStore,
	transactionStore core.ITransactionStore,
	ledger core.ILedgerService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/pools", poolsHandler(poolStore))
	router.Get("/pools/{asset_id}", poolHandler(poolStore))
	router.Get("/positions/{user_id}", positionHandler(positionStore))
	router.Get("/positions/{user_id}/health", healthHandler(ledger))
	router.Get("/transactions", transactionsHandler(transactionStore))
	router.Get("/transactions/{trace_id}", transactionHandler(transactionStore))

	router.Post("/deposits", ledgerHandler(ledger.Deposit))
	router.Post("/withdrawals", ledgerHandler(ledger.Withdraw))
	router.Post("/borrows", ledgerHandler(ledger.Borrow))
	router.Post("/repays", ledgerHandler(ledger.Repay))
	router.Post("/liquidations", liquidateHandler(ledger))

	return router
}
