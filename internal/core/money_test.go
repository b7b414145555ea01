package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{"-1", "-1.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustMoney("1000")})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":1000.00}` {
		t.Fatalf("unexpected encoding %s", b)
	}

	for _, in := range []string{`{"amount":12.5}`, `{"amount":"12.50"}`} {
		var v struct {
			Amount Money `json:"amount"`
		}
		if err := json.Unmarshal([]byte(in), &v); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if v.Amount.String() != "12.50" {
			t.Fatalf("%s decoded to %s", in, v.Amount)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	sum := ZeroMoney()
	for i := 0; i < 10; i++ {
		sum = sum.Add(MustMoney("0.10"))
	}
	if !sum.Equal(MustMoney("1.00")) {
		t.Fatalf("expected 1.00, got %s", sum)
	}
	if !MustMoney("0.01").IsPositive() || MustMoney("0").IsPositive() {
		t.Fatal("IsPositive mismatch")
	}
}

func TestMoneyScan(t *testing.T) {
	for _, src := range []any{"12.30", []byte("12.3"), int64(12), 12.3} {
		var m Money
		if err := m.Scan(src); err != nil {
			t.Fatalf("scan %v: %v", src, err)
		}
		if m.String() != "12.30" && m.String() != "12.00" {
			t.Fatalf("scan %v: got %s", src, m)
		}
	}
}
