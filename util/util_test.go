package util

import "testing"

func TestMin(t *testing.T) {
	if got := Min(3, 7); got != 3 {
		t.Fatalf("Min(3, 7) = %d, want 3", got)
	}
	if got := Min(7, 3); got != 3 {
		t.Fatalf("Min(7, 3) = %d, want 3", got)
	}
	if got := Min(5, 5); got != 5 {
		t.Fatalf("Min(5, 5) = %d, want 5", got)
	}
}

func TestRounddown(t *testing.T) {
	cases := []struct{ v, b, want int }{
		{4096, 4096, 4096},
		{4097, 4096, 4096},
		{8191, 4096, 4096},
		{0, 4096, 0},
	}
	for _, c := range cases {
		if got := Rounddown(c.v, c.b); got != c.want {
			t.Fatalf("Rounddown(%d, %d) = %d, want %d", c.v, c.b, got, c.want)
		}
	}
}

func TestRoundup(t *testing.T) {
	cases := []struct{ v, b, want int }{
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{1, 4096, 4096},
		{0, 4096, 0},
	}
	for _, c := range cases {
		if got := Roundup(c.v, c.b); got != c.want {
			t.Fatalf("Roundup(%d, %d) = %d, want %d", c.v, c.b, got, c.want)
		}
	}
}
