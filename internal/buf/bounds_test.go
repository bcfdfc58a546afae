package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if got, ok := MulOverflowSafe(7, 32); !ok || got != 224 {
		t.Fatalf("MulOverflowSafe(7,32)=%d,%v want 224,true", got, ok)
	}
	if got, ok := MulOverflowSafe(0, math.MaxInt); !ok || got != 0 {
		t.Fatalf("zero operand should yield 0,true; got %d,%v", got, ok)
	}
	if _, ok := MulOverflowSafe(math.MaxInt/2, 3); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := MulOverflowSafe(-1, 3); ok {
		t.Fatalf("negative operand must be rejected")
	}
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		offset  uint64
		size    uint64
		wantEnd int64
		wantErr bool
	}{
		{"exact fit", 100, 84, 16, 100, false},
		{"empty at end", 100, 100, 0, 100, false},
		{"one past", 100, 85, 16, 0, true},
		{"offset past", 100, 200, 0, 0, true},
		{"u32 wrap", 1 << 20, math.MaxUint32, math.MaxUint32, 0, true},
		{"u64 overflow", math.MaxInt64, math.MaxUint64, 1, 0, true},
		{"negative limit", -1, 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, err := CheckRange(tt.limit, tt.offset, tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got end=%d", end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if end != tt.wantEnd {
				t.Fatalf("end=%d want %d", end, tt.wantEnd)
			}
		})
	}
}

func TestCheckListBounds(t *testing.T) {
	if end, err := CheckListBounds(64, 8, 2, 20); err != nil || end != 48 {
		t.Fatalf("CheckListBounds=%d,%v want 48,nil", end, err)
	}
	if _, err := CheckListBounds(64, 8, 3, 20); err == nil {
		t.Fatalf("expected bounds error")
	}
	if _, err := CheckListBounds(64, 0, math.MaxInt, 32); err == nil {
		t.Fatalf("expected overflow error")
	}
	if _, err := CheckListBounds(64, -1, 1, 1); err == nil {
		t.Fatalf("expected negative offset error")
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
}
