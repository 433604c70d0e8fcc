package services

import "testing"

func TestEstimateFuelCost(t *testing.T) {
	cases := []struct {
		name  string
		km    float64
		l100  float64
		price float64
		want  float64
	}{
		{"typical", 40, 25, 5.5, 55},
		{"rounded", 12.345, 25, 5.5, 16.97},
		{"zero distance", 0, 25, 5.5, 0},
		{"no consumption", 10, 0, 5.5, 0},
		{"negative price", 10, 25, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateFuelCost(tc.km, tc.l100, tc.price); got != tc.want {
				t.Fatalf("EstimateFuelCost(%v, %v, %v) = %v, want %v", tc.km, tc.l100, tc.price, got, tc.want)
			}
		})
	}
}
