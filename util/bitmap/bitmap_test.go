package bitmap

import (
	"testing"

	"github.com/go-test/deep"
)

func TestSetClear(t *testing.T) {
	bm := NewBits(20)
	if bm.Len() != 20 {
		t.Fatalf("Len() = %d, expected 20", bm.Len())
	}
	for _, loc := range []int{0, 3, 4, 19} {
		if err := bm.Set(loc); err != nil {
			t.Fatalf("Set(%d): unexpected error: %v", loc, err)
		}
	}
	if err := bm.Clear(4); err != nil {
		t.Fatalf("Clear(4): unexpected error: %v", err)
	}
	for loc, expected := range map[int]bool{0: true, 1: false, 3: true, 4: false, 19: true} {
		set, err := bm.IsSet(loc)
		if err != nil {
			t.Fatalf("IsSet(%d): unexpected error: %v", loc, err)
		}
		if set != expected {
			t.Errorf("IsSet(%d) = %v, expected %v", loc, set, expected)
		}
	}
	for _, loc := range []int{-1, 20, 100} {
		if err := bm.Set(loc); err == nil {
			t.Errorf("Set(%d): expected error", loc)
		}
		if _, err := bm.IsSet(loc); err == nil {
			t.Errorf("IsSet(%d): expected error", loc)
		}
	}
}

func TestFreeList(t *testing.T) {
	tests := []struct {
		name string
		set  []int
		size int
		list []Contiguous
	}{
		{"all free", nil, 10, []Contiguous{{0, 10}}},
		{"none free", []int{0, 1, 2}, 3, nil},
		// 10010010 00100000 from the doc comment, bit 0 first
		{"runs", []int{0, 3, 6, 10}, 16, []Contiguous{{1, 2}, {4, 2}, {7, 3}, {11, 5}}},
		{"size not a byte multiple", []int{0}, 12, []Contiguous{{1, 11}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := NewBits(tt.size)
			for _, loc := range tt.set {
				if err := bm.Set(loc); err != nil {
					t.Fatalf("Set(%d): unexpected error: %v", loc, err)
				}
			}
			if diff := deep.Equal(bm.FreeList(), tt.list); diff != nil {
				t.Errorf("FreeList() mismatch: %v", diff)
			}
		})
	}
}
