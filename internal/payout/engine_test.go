package payout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coinladder-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CreditRecord{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, uid string, referrerID *string, coins float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		UID:        uid,
		ReferrerID: referrerID,
		Coins:      coins,
		Status:     models.StatusInactive,
	}).Error)
}

func coinsOf(t *testing.T, db *gorm.DB, uid string) float64 {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("uid = ?", uid).First(&user).Error)
	return user.Coins
}

func ref(uid string) *string {
	return &uid
}

func distribute(t *testing.T, db *gorm.DB, engine *Engine, uid string, level int, rule *Rule) []Credit {
	t.Helper()
	var credits []Credit
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("uid = ?", uid).First(&user).Error; err != nil {
			return err
		}
		var err error
		credits, err = engine.Distribute(tx, &user, level, rule)
		return err
	}))
	return credits
}

func TestDistribute_CreditsAdminAndUpline(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", nil, 0)
	seedUser(t, db, "d", nil, 0)
	seedUser(t, db, "c", ref("d"), 0)
	seedUser(t, db, "b", ref("c"), 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("admin")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	assert.Equal(t, 3.0, coinsOf(t, db, "admin"))
	assert.Equal(t, 2.0, coinsOf(t, db, "b"))
	assert.Equal(t, 0.5, coinsOf(t, db, "c"))
	assert.Equal(t, 0.5, coinsOf(t, db, "d"))
	assert.Equal(t, 10.0, coinsOf(t, db, "a"), "the spender is not touched by the engine")

	require.Len(t, credits, 4)
	assert.Equal(t, Credit{ReceiverUID: "admin", Amount: 3, Kind: CreditKindAdmin, Depth: -1}, credits[0])
	assert.Equal(t, Credit{ReceiverUID: "b", Amount: 2, Kind: CreditKindUpline, Depth: 0}, credits[1])
	assert.Equal(t, Credit{ReceiverUID: "c", Amount: 0.5, Kind: CreditKindUpline, Depth: 1}, credits[2])
	assert.Equal(t, Credit{ReceiverUID: "d", Amount: 0.5, Kind: CreditKindUpline, Depth: 2}, credits[3])

	var records int64
	require.NoError(t, db.Model(&models.CreditRecord{}).Count(&records).Error)
	assert.EqualValues(t, 4, records)
}

func TestDistribute_NilRuleIsNoOp(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", nil, 0)
	seedUser(t, db, "b", nil, 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("admin")
	credits := distribute(t, db, engine, "a", 99, nil)

	assert.Empty(t, credits)
	assert.Equal(t, 0.0, coinsOf(t, db, "admin"))
	assert.Equal(t, 0.0, coinsOf(t, db, "b"))
}

func TestDistribute_NoAdminConfigured(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "b", nil, 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	require.Len(t, credits, 1)
	assert.Equal(t, CreditKindUpline, credits[0].Kind)
	assert.Equal(t, 2.0, coinsOf(t, db, "b"))
}

func TestDistribute_MissingAdminRecordDoesNotFail(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "b", nil, 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("ghost-admin")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	// The admin credit is still reported even though no row matched.
	require.Len(t, credits, 2)
	assert.Equal(t, 2.0, coinsOf(t, db, "b"))
}

func TestDistribute_StopsAtMissingReferrer(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", nil, 0)
	seedUser(t, db, "b", ref("ghost"), 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("admin")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	require.Len(t, credits, 2)
	assert.Equal(t, 2.0, coinsOf(t, db, "b"))
	assert.Equal(t, 3.0, coinsOf(t, db, "admin"))
}

func TestDistribute_NoReferrer(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", nil, 0)
	seedUser(t, db, "a", nil, 10)

	engine := NewEngine("admin")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	require.Len(t, credits, 1)
	assert.Equal(t, CreditKindAdmin, credits[0].Kind)
}

func TestDistribute_DepthBounded(t *testing.T) {
	db := newTestDB(t)

	// Chain longer than the rule's ten shares: u0 -> u1 -> ... -> u12.
	var parent *string
	for i := 12; i >= 0; i-- {
		uid := fmt.Sprintf("u%d", i)
		seedUser(t, db, uid, parent, 0)
		parent = ref(uid)
	}
	// parent is now u0, but the spender is u0 itself; re-seed a spender.
	seedUser(t, db, "spender", ref("u0"), 200)

	rule := RuleForLevel(10)
	require.Len(t, rule.UplineShares, 10)

	engine := NewEngine("")
	credits := distribute(t, db, engine, "spender", 10, rule)

	assert.Len(t, credits, 10)
	assert.Equal(t, 0.0, coinsOf(t, db, "u10"), "ancestors past the depth bound receive nothing")
	assert.Equal(t, 50.0, coinsOf(t, db, "u0"))
	assert.Equal(t, 2.0, coinsOf(t, db, "u9"))
}

func TestDistribute_CyclicChainCreditsRepeatedly(t *testing.T) {
	db := newTestDB(t)
	// a and b refer each other; the depth bound caps the walk and members
	// inside the bound are credited every time they reappear.
	seedUser(t, db, "b", ref("a"), 0)
	seedUser(t, db, "a", ref("b"), 10)

	engine := NewEngine("")
	credits := distribute(t, db, engine, "a", 1, RuleForLevel(1))

	require.Len(t, credits, 3)
	assert.Equal(t, 2.5, coinsOf(t, db, "b"))  // shares 0 and 2
	assert.Equal(t, 10.5, coinsOf(t, db, "a")) // share 1
}
