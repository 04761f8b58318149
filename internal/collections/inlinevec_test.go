package collections

import "testing"

func TestInlineVecPushSlice(t *testing.T) {
	v := NewInlineVec[int](4)
	v.Push(1)
	v.Push(2)
	v.Push(3)

	got := v.Slice()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Slice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestInlineVecClear(t *testing.T) {
	v := NewInlineVec[int](2)
	v.Push(1)
	v.Clear()
	if !v.IsEmpty() {
		t.Error("Clear should leave the vector empty")
	}
	if v.Len() != 0 {
		t.Errorf("Len() = %d, want 0", v.Len())
	}
}
