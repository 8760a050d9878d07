package payout

// MaxReferralDepth bounds the upline walk regardless of how many shares a
// rule declares.
const MaxReferralDepth = 10

const (
	MinLevel = 1
	MaxLevel = 10
)

// LevelCosts maps an account level to the coin cost of activating or
// upgrading to it. Upgrades pay the full cost of the new level, not a delta.
var LevelCosts = map[int]float64{
	1:  6,
	2:  12,
	3:  25,
	4:  40,
	5:  50,
	6:  65,
	7:  80,
	8:  100,
	9:  125,
	10: 160,
}

// Rule describes how one level's cost is split between the admin account
// and the upline referral chain. UplineShares[0] goes to the direct
// referrer, UplineShares[1] to the referrer's referrer, and so on.
type Rule struct {
	AdminShare   float64
	UplineShares []float64
}

var DistributionRules = map[int]Rule{
	1:  {AdminShare: 3, UplineShares: []float64{2, 0.5, 0.5}},
	2:  {AdminShare: 6, UplineShares: []float64{4, 1, 1}},
	3:  {AdminShare: 12, UplineShares: []float64{8, 2, 2, 1}},
	4:  {AdminShare: 17, UplineShares: []float64{12, 4, 3, 2, 1}},
	5:  {AdminShare: 23, UplineShares: []float64{17, 4, 3, 2, 1}},
	6:  {AdminShare: 30, UplineShares: []float64{25, 4, 3, 2, 1}},
	7:  {AdminShare: 36, UplineShares: []float64{30, 5, 4, 3, 2}},
	8:  {AdminShare: 50, UplineShares: []float64{35, 5, 4, 3, 2, 1}},
	9:  {AdminShare: 70, UplineShares: []float64{40, 5, 4, 3, 2, 1}},
	10: {AdminShare: 56, UplineShares: []float64{50, 10, 9, 8, 7, 6, 5, 4, 3, 2}},
}

// LevelCost returns the activation cost for level and whether the level is
// known.
func LevelCost(level int) (float64, bool) {
	cost, ok := LevelCosts[level]
	return cost, ok
}

// RuleForLevel returns the distribution rule for level, or nil when none is
// configured.
func RuleForLevel(level int) *Rule {
	rule, ok := DistributionRules[level]
	if !ok {
		return nil
	}
	return &rule
}
