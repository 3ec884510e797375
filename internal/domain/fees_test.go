package domain

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSplitAmountExactConservation(t *testing.T) {
	cfg := FeeConfig{ObolBps: 769, ProtectBps: 50, FoundationAddress: common.HexToAddress("0x0f0e")}

	split := SplitAmount(100, cfg)
	// 100 * 769 / 10000 truncates to 7, 100 * 50 / 10000 truncates to 0.
	if split.Foundation != 7 || split.Pool != 0 || split.SellerNet != 93 {
		t.Fatalf("unexpected split %+v", split)
	}

	for _, amount := range []uint64{1, 99, 10_000, 10_001, 123_456_789, math.MaxUint64} {
		split := SplitAmount(amount, cfg)
		if split.Foundation+split.Pool+split.SellerNet != amount {
			t.Errorf("amount %d: split %+v does not sum back", amount, split)
		}
	}
}

func TestSplitAmountNoOverflow(t *testing.T) {
	cfg := FeeConfig{ObolBps: 9_999, ProtectBps: 1, FoundationAddress: common.HexToAddress("0x0f0e")}
	split := SplitAmount(math.MaxUint64, cfg)
	if split.Foundation+split.Pool+split.SellerNet != math.MaxUint64 {
		t.Fatalf("max-amount split %+v does not sum back", split)
	}
	if split.Foundation == 0 {
		t.Fatal("foundation share collapsed to zero, multiplication overflowed")
	}
}

func TestSplitAmountZeroFees(t *testing.T) {
	split := SplitAmount(500, FeeConfig{})
	if split.Foundation != 0 || split.Pool != 0 || split.SellerNet != 500 {
		t.Fatalf("zero-fee split %+v should pass everything to the seller", split)
	}
}

func TestFeeConfigValidate(t *testing.T) {
	foundation := common.HexToAddress("0x0f0e")
	cases := []struct {
		name string
		cfg  FeeConfig
		ok   bool
	}{
		{"typical", FeeConfig{ObolBps: 100, ProtectBps: 50, FoundationAddress: foundation}, true},
		{"full split", FeeConfig{ObolBps: 5_000, ProtectBps: 5_000, FoundationAddress: foundation}, true},
		{"over denominator", FeeConfig{ObolBps: 5_001, ProtectBps: 5_000, FoundationAddress: foundation}, false},
		{"foundation share without address", FeeConfig{ObolBps: 1}, false},
		{"pool share without address", FeeConfig{ProtectBps: 50}, true},
		{"all zero", FeeConfig{}, true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected validation failure", tc.name)
		}
	}
}
