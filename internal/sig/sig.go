// Package sig defines the canonical coverage signature format.
//
// A signature is a dot-separated string <namespace>.<kind>[:discriminator]*
// identifying one exercised capability instance, e.g.
// "perp.order.GTC:false:none". Signatures are a pure function of an action's
// normalized request and acknowledgement; observed payloads never contribute.
package sig

import (
	"fmt"
	"strings"
)

// Signature is a canonical capability signature.
type Signature string

// String returns the signature text.
func (s Signature) String() string {
	return string(s)
}

// Segments splits the signature on ".".
func (s Signature) Segments() []string {
	return strings.Split(string(s), ".")
}

// PerpOrder builds the signature for one placed order:
// perp.order.<TIF upper>:<reduceOnly>:<trigger kind lower>.
func PerpOrder(tif string, reduceOnly bool, trigger string) Signature {
	return Signature(fmt.Sprintf("perp.order.%s:%t:%s", strings.ToUpper(tif), reduceOnly, trigger))
}

// PerpCancel builds the signature for one cancel action scope
// (last, oids, all).
func PerpCancel(scope string) Signature {
	return Signature("perp.cancel." + scope)
}

// AccountUsdClassTransfer builds the signature for a collateral transfer
// direction (toPerp, fromPerp).
func AccountUsdClassTransfer(direction string) Signature {
	return Signature("account.usdClassTransfer." + direction)
}

// RiskSetLeverage builds the signature for a leverage update on one coin.
func RiskSetLeverage(coin string) Signature {
	return Signature("risk.setLeverage." + strings.ToUpper(coin))
}

// NormalizeTIF maps a raw time-in-force to its canonical form. Anything
// other than ALO or IOC normalizes to GTC, the exchange default.
func NormalizeTIF(raw string) string {
	switch strings.ToUpper(raw) {
	case "ALO":
		return "ALO"
	case "IOC":
		return "IOC"
	default:
		return "GTC"
	}
}
