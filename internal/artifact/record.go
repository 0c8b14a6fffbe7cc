package artifact

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ActionKind enumerates the action variants the runner emits. The evaluator
// handles each kind exhaustively; unknown kinds surface as
// UnsupportedAction reasons rather than errors.
type ActionKind string

const (
	ActionPerpOrders       ActionKind = "perp_orders"
	ActionCancelLast       ActionKind = "cancel_last"
	ActionCancelOids       ActionKind = "cancel_oids"
	ActionCancelAll        ActionKind = "cancel_all"
	ActionUsdClassTransfer ActionKind = "usd_class_transfer"
	ActionSetLeverage      ActionKind = "set_leverage"
)

// ActionLogRecord is one line of per_action.jsonl as written by the runner.
// The evaluator treats it as immutable input; windowKeyMs is recomputed from
// submitTsMs because the logged value may reflect a stale window size.
type ActionLogRecord struct {
	StepIdx     int             `json:"stepIdx"`
	Action      string          `json:"action"`
	SubmitTsMs  int64           `json:"submitTsMs"`
	WindowKeyMs int64           `json:"windowKeyMs"`
	Request     Request         `json:"request"`
	Ack         *Ack            `json:"ack,omitempty"`
	Observed    ObservationList `json:"observed,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Kind returns the typed action kind.
func (r *ActionLogRecord) Kind() ActionKind {
	return ActionKind(r.Action)
}

// Request is the kind-keyed request payload. Exactly one field is set for a
// well-formed record.
type Request struct {
	PerpOrders       *PerpOrdersRequest       `json:"perp_orders,omitempty"`
	CancelLast       *CancelLastRequest       `json:"cancel_last,omitempty"`
	CancelOids       *CancelOidsRequest       `json:"cancel_oids,omitempty"`
	CancelAll        *CancelAllRequest        `json:"cancel_all,omitempty"`
	UsdClassTransfer *UsdClassTransferRequest `json:"usd_class_transfer,omitempty"`
	SetLeverage      *SetLeverageRequest      `json:"set_leverage,omitempty"`
}

// PerpOrdersRequest carries the batch of orders submitted in one action.
type PerpOrdersRequest struct {
	Orders      []PerpOrder `json:"orders"`
	BuilderCode string      `json:"builderCode,omitempty"`
}

// PerpOrder is one order inside a perp_orders request.
type PerpOrder struct {
	Coin        string   `json:"coin"`
	Side        string   `json:"side"`
	Tif         string   `json:"tif,omitempty"`
	Sz          Number   `json:"sz"`
	Px          Number   `json:"px,omitempty"`
	ReduceOnly  bool     `json:"reduceOnly,omitempty"`
	Cloid       string   `json:"cloid,omitempty"`
	BuilderCode string   `json:"builderCode,omitempty"`
	Trigger     *Trigger `json:"trigger,omitempty"`
}

// TriggerKind returns the normalized trigger discriminator: the lowercased
// trigger kind, or "none" when the order has no trigger.
func (o *PerpOrder) TriggerKind() string {
	if o.Trigger == nil || o.Trigger.Kind == "" {
		return "none"
	}
	return strings.ToLower(o.Trigger.Kind)
}

// Trigger decodes the order trigger, which the runner serializes either as
// an object with a "kind" field or as a bare string label.
type Trigger struct {
	Kind string
}

func (t *Trigger) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = Trigger{}
		return nil
	}
	if b[0] == '"' {
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		*t = Trigger{Kind: strings.ToLower(label)}
		return nil
	}
	var obj struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		// Non-object, non-string trigger payloads normalize to none.
		*t = Trigger{}
		return nil
	}
	*t = Trigger{Kind: strings.ToLower(obj.Kind)}
	return nil
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	if t.Kind == "" {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]string{"kind": t.Kind})
}

// CancelLastRequest cancels the most recent resting order, optionally
// scoped to one coin.
type CancelLastRequest struct {
	Coin string `json:"coin,omitempty"`
}

// CancelOidsRequest cancels a specific set of order ids on one coin.
type CancelOidsRequest struct {
	Coin string `json:"coin"`
	Oids []Oid  `json:"oids"`
}

// CancelAllRequest cancels every resting order, optionally scoped to one coin.
type CancelAllRequest struct {
	Coin string `json:"coin,omitempty"`
}

// UsdClassTransferRequest moves collateral between spot and perp wallets.
// ToPerp is a pointer so an absent field is distinguishable from false.
type UsdClassTransferRequest struct {
	ToPerp *bool  `json:"toPerp,omitempty"`
	Usdc   Number `json:"usdc"`
}

// SetLeverageRequest updates leverage for one coin.
type SetLeverageRequest struct {
	Coin     string `json:"coin"`
	Leverage int    `json:"leverage"`
	Cross    bool   `json:"cross,omitempty"`
}

// Ack is the exchange acknowledgement for one action.
type Ack struct {
	Status string   `json:"status"`
	Data   *AckData `json:"data,omitempty"`
}

// OK reports whether the acknowledgement exists and its status is "ok"
// (case-insensitive).
func (a *Ack) OK() bool {
	return a != nil && strings.EqualFold(a.Status, "ok")
}

// Statuses returns the positional per-order outcome entries, or nil.
func (a *Ack) Statuses() []OrderStatus {
	if a == nil || a.Data == nil {
		return nil
	}
	return a.Data.Statuses
}

// AckData carries the order-action payload of an acknowledgement.
type AckData struct {
	Statuses []OrderStatus `json:"statuses"`
}

// OrderStatus is the outcome entry for the order at the same position in the
// request's order list.
type OrderStatus struct {
	Kind            string `json:"kind"`
	Oid             *Oid   `json:"oid,omitempty"`
	AvgPx           string `json:"avgPx,omitempty"`
	TotalSz         string `json:"totalSz,omitempty"`
	StatusTimestamp *int64 `json:"statusTimestamp,omitempty"`
}

// IsError reports whether the entry is an error outcome (case-insensitive).
func (s OrderStatus) IsError() bool {
	return strings.EqualFold(s.Kind, "error")
}

// IsFilled reports whether the entry records an immediate fill.
func (s OrderStatus) IsFilled() bool {
	return strings.EqualFold(s.Kind, "filled")
}

// Observation is one observed payload attached to an action, tagged with the
// websocket channel it came from.
type Observation struct {
	Channel string  `json:"channel"`
	ToPerp  *bool   `json:"toPerp,omitempty"`
	Usdc    *Number `json:"usdc,omitempty"`
	Time    *int64  `json:"time,omitempty"`
	Px      string  `json:"px,omitempty"`
	Sz      string  `json:"sz,omitempty"`
	Fills   []Fill  `json:"fills,omitempty"`
}

// Fill is one realized fill, either inline in an observation or inside a
// userFills event.
type Fill struct {
	Px   string `json:"px,omitempty"`
	Sz   string `json:"sz,omitempty"`
	Time *int64 `json:"time,omitempty"`
	Oid  *Oid   `json:"oid,omitempty"`
}

// ObservationList normalizes the dual-shape "observed" field (single object
// or array) to a list at the input boundary. Downstream code never
// re-branches on shape.
type ObservationList []Observation

func (l *ObservationList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var list []Observation
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var single Observation
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	*l = ObservationList{single}
	return nil
}

// StreamEvent is one line of ws_stream.jsonl. Only the fields the
// evaluator correlates on are decoded; everything else stays in the raw line.
type StreamEvent struct {
	Channel string  `json:"channel"`
	ToPerp  *bool   `json:"toPerp,omitempty"`
	Usdc    *Number `json:"usdc,omitempty"`
	Time    *int64  `json:"time,omitempty"`
	Fills   []Fill  `json:"fills,omitempty"`
}

// Channels the evaluator consumes from the event-stream log.
const (
	ChannelAccountClassTransfer = "accountClassTransfer"
	ChannelUserFills            = "userFills"
)
