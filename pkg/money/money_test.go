package money

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"
)

func TestArithmeticIsExact(t *testing.T) {
	t.Parallel()
	a := New(10.1)
	b := a.MulInt(1000)
	want := New(10100)
	if !b.Equal(want) {
		t.Errorf("10.1 * 1000 = %s, want %s", b, want)
	}
}

func TestMaxPicksGreater(t *testing.T) {
	t.Parallel()
	if got := Max(New(5), New(5.1)); !got.Equal(New(5.1)) {
		t.Errorf("Max(5, 5.1) = %s, want 5.1", got)
	}
	if got := Max(New(5), New(5.1)); got.Equal(New(5)) {
		t.Errorf("Max(5, 5.1) incorrectly returned the smaller operand")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	m := New(1234.5)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Money
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("round trip = %s, want %s", got, m)
	}
}

func TestGobRoundTripPreservesPrecision(t *testing.T) {
	t.Parallel()
	m, err := Parse("89994.90123456")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		t.Fatalf("gob encode: %v", err)
	}
	var got Money
	if err := gob.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("gob decode: %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("gob round trip = %s, want %s", got, m)
	}
}

func TestStringFormatsTwoDecimals(t *testing.T) {
	t.Parallel()
	if got := New(5).String(); got != "5.00" {
		t.Errorf("String() = %q, want %q", got, "5.00")
	}
}
