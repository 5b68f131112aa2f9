package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/param"
	"github.com/nidhish-srivastava/defi-lending-protocol/handler/render"
)

var errNotFound = errors.New("not found")

type ledgerFunc func(ctx context.Context, req *core.LedgerRequest) (*core.Transaction, error)

func ledgerHandler(fn ledgerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TraceID string `json:"trace_id" valid:"uuid,optional"`
			UserID  string `json:"user_id" valid:"required"`
			AssetID string `json:"asset_id" valid:"required"`
			Amount  uint64 `json:"amount,string"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		t, err := fn(r.Context(), &core.LedgerRequest{
			TraceID: body.TraceID,
			UserID:  body.UserID,
			AssetID: body.AssetID,
			Amount:  body.Amount,
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, t)
	}
}

func liquidateHandler(ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TraceID           string `json:"trace_id" valid:"uuid,optional"`
			LiquidatorID      string `json:"liquidator_id" valid:"required"`
			UserID            string `json:"user_id" valid:"required"`
			CollateralAssetID string `json:"collateral_asset_id" valid:"required"`
			BorrowedAssetID   string `json:"borrowed_asset_id" valid:"required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		t, err := ledger.Liquidate(r.Context(), &core.LiquidateRequest{
			TraceID:           body.TraceID,
			LiquidatorID:      body.LiquidatorID,
			UserID:            body.UserID,
			CollateralAssetID: body.CollateralAssetID,
			BorrowedAssetID:   body.BorrowedAssetID,
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, t)
	}
}
