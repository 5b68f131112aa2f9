package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

const (
	// TransactionKeyShares shares minted or burned
	TransactionKeyShares = "shares"
	// TransactionKeyPrices prices used for valuation
	TransactionKeyPrices = "prices"
	// TransactionKeyHealth health factor before the operation
	TransactionKeyHealth = "health"
	// TransactionKeyRepayAmount debt repaid by a liquidator
	TransactionKeyRepayAmount = "repay_amount"
	// TransactionKeySeizeAmount collateral seized by a liquidator
	TransactionKeySeizeAmount = "seize_amount"
	// TransactionKeyCollateralAsset seized asset
	TransactionKeyCollateralAsset = "collateral_asset_id"
	// TransactionKeyBorrowable borrow capacity at the time of the borrow
	TransactionKeyBorrowable = "borrowable"
)

// TransactionExtraData extra data
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	return make(TransactionExtraData)
}

// Put put data
func (t TransactionExtraData) Put(key string, value interface{}) {
	t[key] = value
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Transaction audit record of a committed ledger operation
type Transaction struct {
	ID       int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID  string         `sql:"size:36;unique_index:idx_transactions_trace_id" json:"trace_id,omitempty"`
	Action   ActionType     `json:"action,omitempty"`
	UserID   string         `sql:"size:36;index:idx_transactions_user_id" json:"user_id,omitempty"`
	AssetID  string         `sql:"size:64" json:"asset_id,omitempty"`
	Amount   uint64         `json:"amount,omitempty"`
	Accounts pq.StringArray `sql:"type:varchar(1024)" json:"accounts,omitempty"`
	Data     types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	// Position state after the operation
	ContextSnapshot types.JSONText `sql:"type:TEXT" json:"context_snapshot,omitempty"`
	CreatedAt       time.Time      `sql:"default:CURRENT_TIMESTAMP;index:idx_transactions_created_at" json:"created_at,omitempty"`
}

// SetExtraData set data column
func (t *Transaction) SetExtraData(extra TransactionExtraData) {
	data := []byte("{}")
	if extra != nil {
		data = extra.Format()
	}

	t.Data = data
}

// SetContextSnapshot set snapshot column
func (t *Transaction) SetContextSnapshot(cs *ContextSnapshot) {
	t.ContextSnapshot = cs.Bytes()
}

// UnmarshalExtraData decode data column
func (t *Transaction) UnmarshalExtraData(v interface{}) error {
	return json.Unmarshal(t.Data, v)
}

// ContextSnapshot ledger records touched by a transaction
type ContextSnapshot struct {
	Position *Position `json:"position,omitempty"`
	Pools    []*Pool   `json:"pools,omitempty"`
}

// Bytes json encoding, "{}" on failure
func (cs *ContextSnapshot) Bytes() []byte {
	bs, err := json.Marshal(cs)
	if err != nil {
		return []byte("{}")
	}

	return bs
}

// ITransactionStore transaction store interface
type ITransactionStore interface {
	Create(ctx context.Context, tx *db.DB, transaction *Transaction) error
	FindByTraceID(ctx context.Context, traceID string) (*Transaction, error)
	List(ctx context.Context, userID string, fromID int64, limit int) ([]*Transaction, error)
}
