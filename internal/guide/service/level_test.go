package service

import (
	"testing"

	"github.com/LP1295055597/Lvban-sub000/internal/guide/model"
)

func TestPoints(t *testing.T) {
	cases := []struct {
		name  string
		guide model.Guide
		want  int
	}{
		{"fresh guide", model.Guide{}, 0},
		{"orders only", model.Guide{CompletedOrders: 10}, 50},
		{"reviews only", model.Guide{GoodReviews: 7}, 21},
		{"equipment only", model.Guide{HasPhotography: true, HasVehicle: true}, 20},
		{"everything", model.Guide{CompletedOrders: 40, GoodReviews: 30, HasPhotography: true, HasVehicle: true}, 310},
	}
	for _, tc := range cases {
		if got := Points(tc.guide); got != tc.want {
			t.Errorf("%s: got %d points, want %d", tc.name, got, tc.want)
		}
	}
}

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		points int
		want   model.Level
	}{
		{0, model.LevelJunior},
		{100, model.LevelJunior},
		{101, model.LevelIntermediate},
		{300, model.LevelIntermediate},
		{301, model.LevelSenior},
		{600, model.LevelSenior},
		{601, model.LevelGold},
		{5000, model.LevelGold},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.points); got != tc.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tc.points, got, tc.want)
		}
	}
}

func TestCommissionRateMonotonic(t *testing.T) {
	levels := []model.Level{model.LevelJunior, model.LevelIntermediate, model.LevelSenior, model.LevelGold}

	prev := 1.0
	for _, l := range levels {
		rate := BaseCommission(l)
		if rate >= prev {
			t.Fatalf("commission at %s (%v) not lower than the tier below (%v)", l, rate, prev)
		}
		prev = rate
	}
}

func TestCommissionVerificationDiscount(t *testing.T) {
	// Verified senior: 15% base cut to 12%.
	got := CommissionRate(model.LevelSenior, true)
	if got != 0.15*0.8 {
		t.Fatalf("verified senior rate = %v, want %v", got, 0.15*0.8)
	}

	// Verification lowers the rate at every tier.
	for _, l := range []model.Level{model.LevelJunior, model.LevelIntermediate, model.LevelSenior, model.LevelGold} {
		if CommissionRate(l, true) >= CommissionRate(l, false) {
			t.Errorf("verification did not lower the %s rate", l)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	if got := LevelProgress(0); got != 0 {
		t.Fatalf("progress at tier start = %v, want 0", got)
	}
	if got := LevelProgress(601); got != 100 {
		t.Fatalf("top tier progress = %v, want 100", got)
	}
	mid := LevelProgress(150)
	if mid <= 0 || mid >= 100 {
		t.Fatalf("mid-tier progress = %v, want strictly between 0 and 100", mid)
	}
}

func TestPointsToNextLevel(t *testing.T) {
	missing := PointsToNextLevel(80)
	if missing == nil || *missing != 21 {
		t.Fatalf("PointsToNextLevel(80) = %v, want 21", missing)
	}
	if PointsToNextLevel(700) != nil {
		t.Fatalf("top tier must report no next level")
	}
}

func TestBuildProfile(t *testing.T) {
	g := model.Guide{
		CompletedOrders: 30,
		GoodReviews:     10,
		HasVehicle:      true,
		Verified:        true,
		HourlyPrice:     90,
	}
	p := BuildProfile(g)

	if p.Points != 190 {
		t.Fatalf("points = %d, want 190", p.Points)
	}
	if p.Level != model.LevelIntermediate {
		t.Fatalf("level = %s, want INTERMEDIATE", p.Level)
	}
	if p.CommissionRate != 0.18*0.8 {
		t.Fatalf("commission = %v, want %v", p.CommissionRate, 0.18*0.8)
	}
	if p.PriceFloor != 30 {
		t.Fatalf("floor = %v, want 30", p.PriceFloor)
	}
	if p.PriceCeiling != 150 {
		t.Fatalf("ceiling = %v, want 150", p.PriceCeiling)
	}
}
