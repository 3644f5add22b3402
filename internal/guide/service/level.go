package service

import "github.com/LP1295055597/Lvban-sub000/internal/guide/model"

// Points weights. One completed order outweighs one good review; each piece
// of equipment adds a flat bonus once.
const (
	pointsPerOrder   = 5
	pointsPerReview  = 3
	photographyBonus = 10
	vehicleBonus     = 10
	verifiedDiscount = 0.8
	topTierProgress  = 100.0
)

type tier struct {
	level          model.Level
	minPoints      int
	maxPoints      int // -1 means unbounded
	baseCommission float64
	priceMax       float64 // verified ceiling, per hour
}

var tiers = []tier{
	{model.LevelJunior, 0, 100, 0.20, 100},
	{model.LevelIntermediate, 101, 300, 0.18, 150},
	{model.LevelSenior, 301, 600, 0.15, 200},
	{model.LevelGold, 601, -1, 0.12, 300},
}

func Points(g model.Guide) int {
	points := g.CompletedOrders*pointsPerOrder + g.GoodReviews*pointsPerReview
	if g.HasPhotography {
		points += photographyBonus
	}
	if g.HasVehicle {
		points += vehicleBonus
	}
	return points
}

// LevelFor returns the highest tier whose minimum is covered by points.
func LevelFor(points int) model.Level {
	level := tiers[0].level
	for _, t := range tiers {
		if points >= t.minPoints {
			level = t.level
		}
	}
	return level
}

func BaseCommission(level model.Level) float64 {
	return tierFor(level).baseCommission
}

// CommissionRate applies the verification discount on top of the tier base.
func CommissionRate(level model.Level, verified bool) float64 {
	rate := BaseCommission(level)
	if verified {
		rate *= verifiedDiscount
	}
	return rate
}

// LevelProgress reports how far into the current tier the points sit, in
// percent. The top tier always reads 100.
func LevelProgress(points int) float64 {
	t := tierFor(LevelFor(points))
	if t.maxPoints < 0 {
		return topTierProgress
	}
	progress := float64(points-t.minPoints) / float64(t.maxPoints-t.minPoints+1)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return progress * 100
}

// PointsToNextLevel returns the points still missing for the next tier, or
// nil at the top tier.
func PointsToNextLevel(points int) *int {
	current := LevelFor(points)
	for i, t := range tiers {
		if t.level == current {
			if i == len(tiers)-1 {
				return nil
			}
			missing := tiers[i+1].minPoints - points
			return &missing
		}
	}
	return nil
}

// BuildProfile assembles the derived view of a guide record.
func BuildProfile(g model.Guide) model.Profile {
	points := Points(g)
	level := LevelFor(points)
	return model.Profile{
		Guide:             g,
		Points:            points,
		Level:             level,
		LevelProgress:     LevelProgress(points),
		PointsToNextLevel: PointsToNextLevel(points),
		CommissionRate:    CommissionRate(level, g.Verified),
		PriceFloor:        PriceFloor,
		PriceCeiling:      PriceCeiling(level, g.Verified),
	}
}

func tierFor(level model.Level) tier {
	for _, t := range tiers {
		if t.level == level {
			return t
		}
	}
	return tiers[0]
}
