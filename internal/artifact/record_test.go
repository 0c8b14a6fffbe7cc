package artifact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservedSingleObjectNormalizesToList(t *testing.T) {
	raw := `{"stepIdx":0,"action":"usd_class_transfer","submitTsMs":1000,"windowKeyMs":1000,
		"request":{"usd_class_transfer":{"toPerp":true,"usdc":25.0}},
		"ack":{"status":"ok"},
		"observed":{"channel":"accountClassTransfer","toPerp":true,"usdc":25.0,"time":1010}}`

	var rec ActionLogRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	require.Len(t, rec.Observed, 1)
	assert.Equal(t, ChannelAccountClassTransfer, rec.Observed[0].Channel)
	require.NotNil(t, rec.Observed[0].Usdc)
	assert.InDelta(t, 25.0, rec.Observed[0].Usdc.Float64(), 1e-9)
}

func TestObservedArrayAndNull(t *testing.T) {
	raw := `{"stepIdx":1,"action":"perp_orders","submitTsMs":1200,"windowKeyMs":1200,
		"request":{"perp_orders":{"orders":[]}},
		"observed":[{"channel":"userFills","fills":[{"px":"3875.1","sz":"0.01","time":1210,"oid":1}]}]}`

	var rec ActionLogRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	require.Len(t, rec.Observed, 1)
	require.Len(t, rec.Observed[0].Fills, 1)
	assert.Equal(t, "3875.1", rec.Observed[0].Fills[0].Px)
	require.NotNil(t, rec.Observed[0].Fills[0].Oid)
	assert.Equal(t, Oid(1), *rec.Observed[0].Fills[0].Oid)

	var noneRec ActionLogRecord
	require.NoError(t, json.Unmarshal([]byte(`{"stepIdx":2,"action":"cancel_all","submitTsMs":0,"windowKeyMs":0,"request":{"cancel_all":{}},"observed":null}`), &noneRec))
	assert.Empty(t, noneRec.Observed)
}

func TestNumberDecodesNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":25.5,"b":"0.01","c":"garbage","d":null}`), &payload))

	assert.True(t, payload.A.Valid())
	assert.InDelta(t, 25.5, payload.A.Float64(), 1e-9)
	assert.True(t, payload.B.Valid())
	assert.InDelta(t, 0.01, payload.B.Float64(), 1e-12)
	assert.False(t, payload.C.Valid())
	assert.False(t, payload.D.Valid())
}

func TestOidDecodesNumberAndString(t *testing.T) {
	var payload struct {
		A Oid `json:"a"`
		B Oid `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12345,"b":"678"}`), &payload))
	assert.Equal(t, Oid(12345), payload.A)
	assert.Equal(t, Oid(678), payload.B)
}

func TestTriggerShapes(t *testing.T) {
	order := func(raw string) *PerpOrder {
		var o PerpOrder
		require.NoError(t, json.Unmarshal([]byte(raw), &o))
		return &o
	}

	assert.Equal(t, "none", order(`{"coin":"ETH","side":"buy","sz":1}`).TriggerKind())
	assert.Equal(t, "tp", order(`{"coin":"ETH","side":"buy","sz":1,"trigger":{"kind":"TP","px":100}}`).TriggerKind())
	assert.Equal(t, "sl", order(`{"coin":"ETH","side":"buy","sz":1,"trigger":"SL"}`).TriggerKind())
	assert.Equal(t, "none", order(`{"coin":"ETH","side":"buy","sz":1,"trigger":7}`).TriggerKind())
}

func TestAckHelpers(t *testing.T) {
	var ack *Ack
	assert.False(t, ack.OK())

	ack = &Ack{Status: "OK"}
	assert.True(t, ack.OK())
	assert.Nil(t, ack.Statuses())

	ack = &Ack{Status: "err"}
	assert.False(t, ack.OK())

	status := OrderStatus{Kind: "Error"}
	assert.True(t, status.IsError())
	assert.False(t, status.IsFilled())
	assert.True(t, OrderStatus{Kind: "FILLED"}.IsFilled())
}

func TestWindowStart(t *testing.T) {
	assert.Equal(t, int64(1000), WindowStart(1199, 200))
	assert.Equal(t, int64(1200), WindowStart(1200, 200))
	assert.Equal(t, int64(1234), WindowStart(1234, 0))
	assert.Equal(t, int64(1234), WindowStart(1234, -5))
}
