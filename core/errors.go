package core

import (
	"fmt"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidAmount amount is zero or too small to mint/burn a share
	ErrInvalidAmount ErrorCode = 100101
	// ErrPoolNotFound no pool for the asset
	ErrPoolNotFound ErrorCode = 100102
	// ErrPositionNotFound user never deposited
	ErrPositionNotFound ErrorCode = 100103
	// ErrInsufficientCollateral withdraw would breach the liquidation threshold
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrOverBorrowableAmount borrow exceeds collateral capacity
	ErrOverBorrowableAmount ErrorCode = 100105
	// ErrOverRepay repay exceeds the borrowed leg
	ErrOverRepay ErrorCode = 100106
	// ErrNotUndercollateralized liquidation of a healthy position
	ErrNotUndercollateralized ErrorCode = 100107
	// ErrEmptyPool ratio required against an empty pool
	ErrEmptyPool ErrorCode = 100108
	// ErrDivisionByZero ratio against a zero denominator
	ErrDivisionByZero ErrorCode = 100109
	// ErrStalePrice oracle price older than the allowed age
	ErrStalePrice ErrorCode = 100110
	// ErrInvalidPrice missing or non-positive oracle price
	ErrInvalidPrice ErrorCode = 100111
	// ErrArithmeticOverflow share or amount math overflowed
	ErrArithmeticOverflow ErrorCode = 100112
	// ErrInsufficientBalance transfer source balance too low
	ErrInsufficientBalance ErrorCode = 100113
	// ErrDecimalsMismatch transfer decimals differ from the asset
	ErrDecimalsMismatch ErrorCode = 100114
	// ErrInvalidTimestamp accrual asked for negative elapsed time
	ErrInvalidTimestamp ErrorCode = 100115
	// ErrVersionConflict record changed by a concurrent writer
	ErrVersionConflict ErrorCode = 100116
	// ErrInvalidRiskParameter pool risk parameter out of range
	ErrInvalidRiskParameter ErrorCode = 100117
	// ErrTraceConflict trace id already used by a different operation
	ErrTraceConflict ErrorCode = 100118
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                "Unknown",
	ErrInvalidAmount:          "InvalidAmount",
	ErrPoolNotFound:           "PoolNotFound",
	ErrPositionNotFound:       "PositionNotFound",
	ErrInsufficientCollateral: "InsufficientCollateral",
	ErrOverBorrowableAmount:   "OverBorrowableAmount",
	ErrOverRepay:              "OverRepay",
	ErrNotUndercollateralized: "NotUndercollateralized",
	ErrEmptyPool:              "EmptyPool",
	ErrDivisionByZero:         "DivisionByZero",
	ErrStalePrice:             "StalePrice",
	ErrInvalidPrice:           "InvalidPrice",
	ErrArithmeticOverflow:     "ArithmeticOverflow",
	ErrInsufficientBalance:    "InsufficientBalance",
	ErrDecimalsMismatch:       "DecimalsMismatch",
	ErrInvalidTimestamp:       "InvalidTimestamp",
	ErrVersionConflict:        "VersionConflict",
	ErrInvalidRiskParameter:   "InvalidRiskParameter",
	ErrTraceConflict:          "TraceConflict",
}

func (e ErrorCode) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}

	return errorNames[ErrUnknown]
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s (%d)", e.String(), int(e))
}
