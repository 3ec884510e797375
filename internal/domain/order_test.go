package domain

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func sampleOrder() Order {
	return Order{
		TicketCommit:   common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101"),
		Seller:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Buyer:          common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Price:          1_000,
		Expiry:         time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		MaxPriceCapBps: 12_000,
	}
}

func TestComputeSaleIDDeterministic(t *testing.T) {
	a := ComputeSaleID(sampleOrder())
	b := ComputeSaleID(sampleOrder())
	if a != b {
		t.Fatalf("same order produced different sale ids: %s vs %s", a.Hex(), b.Hex())
	}
	if a == (common.Hash{}) {
		t.Fatal("sale id must not be zero")
	}
}

func TestComputeSaleIDChangesWithEveryField(t *testing.T) {
	base := ComputeSaleID(sampleOrder())

	mutations := map[string]func(*Order){
		"ticket_commit":     func(o *Order) { o.TicketCommit = common.HexToHash("0x02") },
		"seller":            func(o *Order) { o.Seller = common.HexToAddress("0x3333333333333333333333333333333333333333") },
		"buyer":             func(o *Order) { o.Buyer = common.HexToAddress("0x4444444444444444444444444444444444444444") },
		"price":             func(o *Order) { o.Price++ },
		"expiry":            func(o *Order) { o.Expiry = o.Expiry.Add(time.Second) },
		"max_price_cap_bps": func(o *Order) { o.MaxPriceCapBps++ },
	}
	for field, mutate := range mutations {
		order := sampleOrder()
		mutate(&order)
		if ComputeSaleID(order) == base {
			t.Errorf("changing %s did not change the sale id", field)
		}
	}
}

func TestValidateOrder(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateOrder(sampleOrder(), now); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Order)
		wantErr error
	}{
		{"zero price", func(o *Order) { o.Price = 0 }, ErrInvalidOrder},
		{"self trade", func(o *Order) { o.Buyer = o.Seller }, ErrInvalidOrder},
		{"zero seller", func(o *Order) { o.Seller = common.Address{} }, ErrInvalidOrder},
		{"zero buyer", func(o *Order) { o.Buyer = common.Address{} }, ErrInvalidOrder},
		{"zero commit", func(o *Order) { o.TicketCommit = common.Hash{} }, ErrInvalidOrder},
		{"zero expiry", func(o *Order) { o.Expiry = time.Time{} }, ErrInvalidOrder},
		{"expired", func(o *Order) { o.Expiry = now.Add(-time.Minute) }, ErrExpired},
		{"expiry exactly now", func(o *Order) { o.Expiry = now }, ErrExpired},
	}
	for _, tc := range cases {
		order := sampleOrder()
		tc.mutate(&order)
		if err := ValidateOrder(order, now); err != tc.wantErr {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if addr != common.HexToAddress("0x1111111111111111111111111111111111111111") {
		t.Fatalf("unexpected address %s", addr.Hex())
	}
	for _, raw := range []string{"", "0x123", "not-an-address", "0x11111111111111111111111111111111111111zz"} {
		if _, err := ParseAddress(raw); err == nil {
			t.Errorf("ParseAddress(%q) should fail", raw)
		}
	}
}

func TestParseHash(t *testing.T) {
	want := "0x0101010101010101010101010101010101010101010101010101010101010101"
	hash, err := ParseHash(want)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if hash != common.HexToHash(want) {
		t.Fatalf("unexpected hash %s", hash.Hex())
	}
	for _, raw := range []string{"", "0x01", want + "00", "0xzz01010101010101010101010101010101010101010101010101010101010101"} {
		if _, err := ParseHash(raw); err == nil {
			t.Errorf("ParseHash(%q) should fail", raw)
		}
	}
}
