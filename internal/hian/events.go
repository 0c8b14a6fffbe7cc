package hian

import (
	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
)

// transferEvent is a realized collateral transfer resolved from observed
// payloads or the event stream.
type transferEvent struct {
	usdc   *float64
	timeMs *int64
}

// fillDetail is a realized fill resolved from an ack status, observed
// payloads, or the event stream.
type fillDetail struct {
	px     string
	sz     string
	timeMs *int64
}

// transferFromObserved resolves the transfer event from the record's own
// observed payloads.
func transferFromObserved(action *artifact.ActionLogRecord) *transferEvent {
	for i := range action.Observed {
		obs := &action.Observed[i]
		if obs.Channel != artifact.ChannelAccountClassTransfer {
			continue
		}
		ev := &transferEvent{timeMs: obs.Time}
		if obs.Usdc != nil && obs.Usdc.Valid() {
			amount := obs.Usdc.Float64()
			ev.usdc = &amount
		}
		return ev
	}
	return nil
}

// transferFromStream resolves the transfer from the event-stream log: same
// channel, matching toPerp, within the within_ms radius of the submit
// timestamp. Events without a timestamp are accepted.
func (m *Matcher) transferFromStream(action *artifact.ActionLogRecord) *transferEvent {
	var expectedToPerp *bool
	if req := action.Request.UsdClassTransfer; req != nil {
		expectedToPerp = req.ToPerp
	}

	for i := range m.events {
		ev := &m.events[i]
		if ev.Channel != artifact.ChannelAccountClassTransfer || ev.ToPerp == nil {
			continue
		}
		if ev.Time != nil {
			radius := *ev.Time - action.SubmitTsMs
			if radius < 0 {
				radius = -radius
			}
			if radius > m.settings.WithinMs {
				continue
			}
		}
		// Absent request direction defaults to the event's own, so the
		// event always qualifies.
		wantToPerp := *ev.ToPerp
		if expectedToPerp != nil {
			wantToPerp = *expectedToPerp
		}
		if *ev.ToPerp != wantToPerp {
			continue
		}
		out := &transferEvent{timeMs: ev.Time}
		if ev.Usdc != nil && ev.Usdc.Valid() {
			amount := ev.Usdc.Float64()
			out.usdc = &amount
		}
		return out
	}
	return nil
}

// fillFromStatus extracts the fill carried inline on a "filled" ack status.
func fillFromStatus(status *artifact.OrderStatus) *fillDetail {
	if !status.IsFilled() {
		return nil
	}
	return &fillDetail{
		px:     status.AvgPx,
		sz:     status.TotalSz,
		timeMs: status.StatusTimestamp,
	}
}

// fillFromObserved resolves a fill from the record's own observed userFills
// payloads: the first entry of a fills array, or the observation's inline
// px/sz.
func fillFromObserved(action *artifact.ActionLogRecord) *fillDetail {
	for i := range action.Observed {
		obs := &action.Observed[i]
		if obs.Channel != artifact.ChannelUserFills {
			continue
		}
		if len(obs.Fills) > 0 {
			fill := &obs.Fills[0]
			return &fillDetail{px: fill.Px, sz: fill.Sz, timeMs: fill.Time}
		}
		if obs.Px != "" || obs.Sz != "" {
			return &fillDetail{px: obs.Px, sz: obs.Sz, timeMs: obs.Time}
		}
	}
	return nil
}

// fillFromStream resolves a fill from the event-stream log's userFills
// entries. Fills carrying an order id only match the status oid; fills
// without one match any order.
func fillFromStream(events []artifact.StreamEvent, oid *artifact.Oid) *fillDetail {
	for i := range events {
		ev := &events[i]
		if ev.Channel != artifact.ChannelUserFills {
			continue
		}
		for j := range ev.Fills {
			fill := &ev.Fills[j]
			if fill.Oid != nil {
				if oid == nil || *fill.Oid != *oid {
					continue
				}
			}
			return &fillDetail{px: fill.Px, sz: fill.Sz, timeMs: fill.Time}
		}
	}
	return nil
}
