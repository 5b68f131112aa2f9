package core

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// AssetKind the closed set of assets the ledger accepts as collateral or debt
type AssetKind int

const (
	// AssetSOL SOL leg
	AssetSOL AssetKind = iota + 1
	// AssetUSDC USDC leg
	AssetUSDC
)

// AssetKinds every asset kind, in lock order
var AssetKinds = []AssetKind{AssetSOL, AssetUSDC}

func (k AssetKind) String() string {
	switch k {
	case AssetSOL:
		return "SOL"
	case AssetUSDC:
		return "USDC"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(k))
	}
}

// Valid report whether k is one of the known kinds
func (k AssetKind) Valid() bool {
	switch k {
	case AssetSOL, AssetUSDC:
		return true
	default:
		return false
	}
}

// ParseAssetKind parse symbol like "sol" or "USDC"
func ParseAssetKind(s string) (AssetKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SOL":
		return AssetSOL, nil
	case "USDC":
		return AssetUSDC, nil
	default:
		return 0, fmt.Errorf("unknown asset kind %q", s)
	}
}

// Value implement driver.Valuer
func (k AssetKind) Value() (driver.Value, error) {
	return int64(k), nil
}

// Scan implement sql.Scanner
func (k *AssetKind) Scan(src interface{}) error {
	v, err := cast.ToIntE(src)
	if err != nil {
		return err
	}

	*k = AssetKind(v)
	return nil
}

// MarshalText encode as symbol
func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decode from symbol
func (k *AssetKind) UnmarshalText(b []byte) error {
	v, err := ParseAssetKind(string(b))
	if err != nil {
		return err
	}

	*k = v
	return nil
}
