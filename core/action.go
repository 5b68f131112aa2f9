package core

// ActionType ledger operation
type ActionType int

const (
	_ ActionType = iota
	// ActionTypeDeposit deposit
	ActionTypeDeposit
	// ActionTypeWithdraw withdraw
	ActionTypeWithdraw
	// ActionTypeBorrow borrow
	ActionTypeBorrow
	// ActionTypeRepay repay
	ActionTypeRepay
	// ActionTypeLiquidate liquidate
	ActionTypeLiquidate
	// ActionTypeFaucet test credit
	ActionTypeFaucet
)

func (a ActionType) String() string {
	switch a {
	case ActionTypeDeposit:
		return "deposit"
	case ActionTypeWithdraw:
		return "withdraw"
	case ActionTypeBorrow:
		return "borrow"
	case ActionTypeRepay:
		return "repay"
	case ActionTypeLiquidate:
		return "liquidate"
	case ActionTypeFaucet:
		return "faucet"
	default:
		return "unknown"
	}
}
