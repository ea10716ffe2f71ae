package ingest

import (
	"testing"
)

func TestParseTickRawStream(t *testing.T) {
	raw := []byte(`{"u":400900217,"s":"BNBUSDT","b":"25.35190000","B":"31.21000000","a":"25.36520000","A":"40.66000000"}`)

	tick, ok, err := ParseTick(raw, 4, 1700000000000)
	if err != nil {
		t.Fatalf("ParseTick failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a tick")
	}
	if tick.Symbol != "BNBUSDT" {
		t.Errorf("expected symbol BNBUSDT, got %s", tick.Symbol)
	}
	if tick.Bid != 253519 {
		t.Errorf("expected scaled bid 253519, got %d", tick.Bid)
	}
	if tick.Ask != 253652 {
		t.Errorf("expected scaled ask 253652, got %d", tick.Ask)
	}
	if tick.Time != 1700000000000 {
		t.Errorf("expected receive time, got %d", tick.Time)
	}
}

func TestParseTickCombinedStream(t *testing.T) {
	raw := []byte(`{"stream":"btcusdt@bookTicker","data":{"u":1,"s":"BTCUSDT","b":"64000.10","B":"1","a":"64000.20","A":"1"}}`)

	tick, ok, err := ParseTick(raw, 2, 1)
	if err != nil {
		t.Fatalf("ParseTick failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a tick")
	}
	if tick.Bid != 6400010 || tick.Ask != 6400020 {
		t.Errorf("wrong scaled prices: bid=%d ask=%d", tick.Bid, tick.Ask)
	}
}

func TestParseTickSkipsAcknowledgements(t *testing.T) {
	ack := []byte(`{"result":null,"id":1}`)

	_, ok, err := ParseTick(ack, 4, 1)
	if err != nil {
		t.Fatalf("acknowledgement should not error: %v", err)
	}
	if ok {
		t.Error("acknowledgement must not produce a tick")
	}
}

func TestParseTickBadPrice(t *testing.T) {
	raw := []byte(`{"s":"BTCUSDT","b":"not-a-price","a":"1.0"}`)

	if _, _, err := ParseTick(raw, 4, 1); err == nil {
		t.Error("expected error for malformed price")
	}
}
