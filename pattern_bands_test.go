package main

import "testing"

func TestPlanBandsDirtiesEveryBandEveryFrame(t *testing.T) {
	plan, _ := planBands(0, RuntimeState{})
	if len(plan.Bands) != BandCount {
		t.Fatalf("got %d bands, want %d", len(plan.Bands), BandCount)
	}
	for i, bc := range plan.Bands {
		if bc.Band != i {
			t.Fatalf("band %d out of order: got %d", i, bc.Band)
		}
		if bc.Color.R < 0 || bc.Color.R > 1 || bc.Color.G < 0 || bc.Color.G > 1 {
			t.Fatalf("band %d color out of [0,1]: %+v", i, bc.Color)
		}
	}
}

func TestPlanBandsDeterministic(t *testing.T) {
	p1, _ := planBands(1.5, RuntimeState{})
	p2, _ := planBands(1.5, RuntimeState{})
	for i := range p1.Bands {
		if p1.Bands[i] != p2.Bands[i] {
			t.Fatalf("band %d differs across identical calls", i)
		}
	}
}
