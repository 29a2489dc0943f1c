package hbridge

import "testing"

func TestDrive_SpecBoundaries(t *testing.T) {
	cases := []struct {
		cmd        byte
		wantA, wantB bool
	}{
		{0, false, false},
		{64, false, false},
		{191, false, false},
		{192, false, false},
		{1, false, true},
		{63, false, true},
		{50, false, true},
		{128, false, true},
		{190, false, true},
		{65, true, false},
		{127, true, false},
		{193, true, false},
		{255, true, false},
	}
	for _, tc := range cases {
		a, b := Drive(tc.cmd)
		if a != tc.wantA || b != tc.wantB {
			t.Errorf("Drive(%d) = (%v,%v), want (%v,%v)", tc.cmd, a, b, tc.wantA, tc.wantB)
		}
	}
}

func TestDrive_PartitionsAllBytes(t *testing.T) {
	counts := map[string]int{}
	for i := 0; i <= 255; i++ {
		a, b := Drive(byte(i))
		switch {
		case !a && !b:
			counts["stop"]++
		case !a && b:
			counts["reverse"]++
		case a && !b:
			counts["forward"]++
		default:
			t.Fatalf("Drive(%d) returned impossible state a=%v b=%v", i, a, b)
		}
	}
	total := counts["stop"] + counts["reverse"] + counts["forward"]
	if total != 256 {
		t.Fatalf("table does not partition [0,255]: total classified = %d", total)
	}
}
