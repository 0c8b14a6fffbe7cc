package coverage

import (
	"fmt"

	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
	"github.com/sigridjineth/HyperLiquidBench/internal/sig"
)

// Diagnostic reasons attached to evaluated action records. They are data,
// not errors: a record with a reason is excluded from scoring (when it also
// carries no signatures) but never aborts the batch.
const (
	ReasonMissingAck     = "MissingAck"
	ReasonAckNotOk       = "AckNotOk"
	ReasonMissingRequest = "MissingRequest"
	ReasonNoEffect       = "NoEffect"
	ReasonIncompleteAck  = "IncompleteAck"
)

// ReasonUnsupportedAction formats the reason for an action kind the
// evaluator does not recognize.
func ReasonUnsupportedAction(kind string) string {
	return fmt.Sprintf("UnsupportedAction(%s)", kind)
}

// EvalActionRecord is the normalized form of one action-log record: the
// signatures it produced, whether it is ignored for scoring, and a
// diagnostic reason. Output is 1:1 with input, in input order.
type EvalActionRecord struct {
	StepIdx    int             `json:"stepIdx"`
	Action     string          `json:"action"`
	SubmitTsMs int64           `json:"submitTsMs"`
	Signatures []sig.Signature `json:"signatures"`
	Ignored    bool            `json:"ignored"`
	Reason     string          `json:"reason,omitempty"`
}

// NormalizeRecord converts one raw action-log record into its evaluated
// form. Signatures derive only from the request and acknowledgement, never
// from observed payloads.
func NormalizeRecord(rec artifact.ActionLogRecord) EvalActionRecord {
	out := EvalActionRecord{
		StepIdx:    rec.StepIdx,
		Action:     rec.Action,
		SubmitTsMs: rec.SubmitTsMs,
	}

	if rec.Ack == nil {
		out.Ignored = true
		out.Reason = ReasonMissingAck
		return out
	}
	if !rec.Ack.OK() {
		out.Ignored = true
		out.Reason = ReasonAckNotOk
		return out
	}

	switch rec.Kind() {
	case artifact.ActionPerpOrders:
		normalizePerpOrders(rec, &out)
	case artifact.ActionCancelLast:
		out.Signatures = []sig.Signature{sig.PerpCancel("last")}
	case artifact.ActionCancelOids:
		out.Signatures = []sig.Signature{sig.PerpCancel("oids")}
	case artifact.ActionCancelAll:
		out.Signatures = []sig.Signature{sig.PerpCancel("all")}
	case artifact.ActionUsdClassTransfer:
		// An absent toPerp field defaults to the toPerp direction.
		direction := "toPerp"
		if req := rec.Request.UsdClassTransfer; req != nil && req.ToPerp != nil && !*req.ToPerp {
			direction = "fromPerp"
		}
		out.Signatures = []sig.Signature{sig.AccountUsdClassTransfer(direction)}
	case artifact.ActionSetLeverage:
		coin := "UNKNOWN"
		if req := rec.Request.SetLeverage; req != nil && req.Coin != "" {
			coin = req.Coin
		}
		out.Signatures = []sig.Signature{sig.RiskSetLeverage(coin)}
	default:
		out.Ignored = true
		out.Reason = ReasonUnsupportedAction(rec.Action)
	}

	if len(out.Signatures) == 0 {
		out.Ignored = true
	}
	return out
}

func normalizePerpOrders(rec artifact.ActionLogRecord, out *EvalActionRecord) {
	req := rec.Request.PerpOrders
	if req == nil || len(req.Orders) == 0 {
		out.Reason = ReasonMissingRequest
		return
	}

	statuses := rec.Ack.Statuses()
	incomplete := false
	for i, order := range req.Orders {
		if i >= len(statuses) {
			incomplete = true
			continue
		}
		if statuses[i].IsError() {
			continue
		}
		out.Signatures = append(out.Signatures, sig.PerpOrder(
			sig.NormalizeTIF(order.Tif),
			order.ReduceOnly,
			order.TriggerKind(),
		))
	}

	// A record may carry signatures and a non-fatal reason at once: partial
	// acknowledgements still credit the positions that resolved.
	switch {
	case incomplete:
		out.Reason = ReasonIncompleteAck
	case len(out.Signatures) == 0:
		out.Reason = ReasonNoEffect
	}
}

// NormalizeAll evaluates every record in order, producing exactly one output
// per input.
func NormalizeAll(records []artifact.ActionLogRecord) []EvalActionRecord {
	out := make([]EvalActionRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeRecord(rec))
	}
	return out
}
