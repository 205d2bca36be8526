// services/wager_service.go
package services

import (
	"errors"
	"log"
	"time"

	"bot-arena-system/engine"
	"bot-arena-system/models"
	"bot-arena-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WagerService struct {
	DB     *gorm.DB
	Wallet *WalletServiceClient
}

func NewWagerService(db *gorm.DB, wallet *WalletServiceClient) *WagerService {
	return &WagerService{DB: db, Wallet: wallet}
}

// --- Handlers ---

// PlaceWager records a bet on one side of a match while its window is open.
// The stake is debited through the external wallet service before anything
// is written; a pool that locked mid-flight refunds the debit.
func (s *WagerService) PlaceWager(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		Side   string  `json:"side"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Side != models.SideFighter1 && req.Side != models.SideFighter2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "side must be fighter1 or fighter2"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}

	var match models.BotMatch
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if status := engine.GetBettingStatus(&match, time.Now()); !status.IsOpen {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": status.Reason})
	}

	var pool models.WagerPool
	if err := s.DB.First(&pool, "match_id = ?", match.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "wager pool missing"})
	}
	if pool.Status != models.PoolStatusOpen {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "betting closed"})
	}

	var wallet models.WalletMirror
	if err := s.DB.First(&wallet, "user_id = ?", userID).Error; err != nil || wallet.Balance < req.Amount {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient balance"})
	}

	wager := &models.Wager{
		ID:      uuid.NewString(),
		PoolID:  pool.ID,
		MatchID: match.ID,
		UserID:  userID,
		Side:    req.Side,
		Amount:  req.Amount,
		Status:  models.WagerStatusPlaced,
	}

	// Take the stake first — a wager with no debit behind it is worse than
	// a refunded debit.
	if err := s.Wallet.Debit(userID, req.Amount, wager.ID); err != nil {
		log.Printf("❌ Wallet debit failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "wallet debit failed"})
	}

	column := "total_fighter1"
	if req.Side == models.SideFighter2 {
		column = "total_fighter2"
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Guard on the pool still being open so a concurrent lock pass
		// cannot accept a late wager.
		result := tx.Model(&models.WagerPool{}).
			Where("id = ? AND status = ?", pool.ID, models.PoolStatusOpen).
			Update(column, gorm.Expr(column+" + ?", req.Amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("pool locked")
		}
		return tx.Create(wager).Error
	})
	if err != nil {
		// Give the stake back; best-effort, the wallet side is idempotent
		// on the reference.
		if refundErr := s.Wallet.Credit(userID, req.Amount, wager.ID); refundErr != nil {
			log.Printf("⚠️ Failed to refund rejected wager %s: %v", wager.ID, refundErr)
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "betting closed"})
	}

	log.Printf("💰 Wager %s: user %s bet %.2f on %s (match %s)",
		wager.ID, userID, req.Amount, req.Side, match.ID)
	return c.Status(fiber.StatusCreated).JSON(wager)
}

// GetPool returns a match's wager pool with per-side totals.
func (s *WagerService) GetPool(c *fiber.Ctx) error {
	var pool models.WagerPool
	if err := s.DB.First(&pool, "match_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "pool not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(pool)
}

// GetUserWagers lists the authenticated user's wagers, newest first.
func (s *WagerService) GetUserWagers(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var wagers []models.Wager
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&wagers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(wagers)
}

// --- Lifecycle (called from the scheduler) ---

// LockDuePools closes betting on pools whose window has elapsed. The update
// is conditional on status='open', so overlapping scheduler passes collapse
// to a single effective lock per pool.
func (s *WagerService) LockDuePools(now time.Time) {
	var pools []models.WagerPool
	if err := s.DB.Where("status = ?", models.PoolStatusOpen).Find(&pools).Error; err != nil {
		log.Printf("[Scheduler] DB error loading open pools: %v", err)
		return
	}

	for _, pool := range pools {
		var match models.BotMatch
		if err := s.DB.First(&match, "id = ?", pool.MatchID).Error; err != nil {
			log.Printf("[Scheduler] Pool %s has no match %s: %v", pool.ID, pool.MatchID, err)
			continue
		}
		if engine.GetBettingStatus(&match, now).IsOpen {
			continue
		}

		result := s.DB.Model(&models.WagerPool{}).
			Where("id = ? AND status = ?", pool.ID, models.PoolStatusOpen).
			Update("status", models.PoolStatusLocked)
		if result.Error != nil {
			log.Printf("[Scheduler] Failed to lock pool %s: %v", pool.ID, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			log.Printf("🔒 Locked pool %s for match %s (%.2f vs %.2f)",
				pool.ID, match.ID, pool.TotalFighter1, pool.TotalFighter2)
		}
	}
}

// ResolveDueMatches settles pools for completed matches exactly once: the
// locked → resolved compare-and-swap decides ownership, so double-running the
// scheduler cannot double-pay.
func (s *WagerService) ResolveDueMatches(now time.Time) {
	var pools []models.WagerPool
	if err := s.DB.Where("status <> ?", models.PoolStatusResolved).Find(&pools).Error; err != nil {
		log.Printf("[Scheduler] DB error loading unresolved pools: %v", err)
		return
	}

	for _, pool := range pools {
		var match models.BotMatch
		if err := s.DB.First(&match, "id = ?", pool.MatchID).Error; err != nil {
			continue
		}
		if match.Status != models.MatchStatusCompleted {
			continue
		}

		// A pool can still be open if the match finished between passes;
		// lock it first so the CAS below starts from a known state.
		if pool.Status == models.PoolStatusOpen {
			s.DB.Model(&models.WagerPool{}).
				Where("id = ? AND status = ?", pool.ID, models.PoolStatusOpen).
				Update("status", models.PoolStatusLocked)
		}

		result := s.DB.Model(&models.WagerPool{}).
			Where("id = ? AND status = ?", pool.ID, models.PoolStatusLocked).
			Update("status", models.PoolStatusResolved)
		if result.Error != nil {
			log.Printf("[Scheduler] Failed to resolve pool %s: %v", pool.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			// Another pass owns settlement.
			continue
		}

		if err := s.settlePool(&match, &pool); err != nil {
			log.Printf("❌ Settlement failed for pool %s: %v", pool.ID, err)
			continue
		}

		// Secondary bookkeeping — best-effort, never blocks settlement.
		s.archiveMatch(&match)
	}
}

// settlePool pays the winning side pro-rata from the combined pool, or
// refunds everyone when the match ended with no winner (the turn-cap draw
// policy). Wager rows are updated transactionally; wallet credits follow
// best-effort.
func (s *WagerService) settlePool(match *models.BotMatch, pool *models.WagerPool) error {
	var wagers []models.Wager
	if err := s.DB.Where("pool_id = ?", pool.ID).Find(&wagers).Error; err != nil {
		return err
	}

	// Totals come from the wager rows, never from the pool row loaded before
	// the lock: a wager accepted between that read and the lock still settles
	// at the right odds.
	totalPool := settleOutcomes(match.Winner, wagers)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range wagers {
			w := &wagers[i]
			if err := tx.Model(&models.Wager{}).
				Where("id = ?", w.ID).
				Updates(map[string]interface{}{"status": w.Status, "payout": w.Payout}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, w := range wagers {
		if w.Payout <= 0 {
			continue
		}
		if err := s.Wallet.Credit(w.UserID, w.Payout, w.ID); err != nil {
			log.Printf("⚠️ Wallet credit failed for wager %s (user %s, %.2f): %v",
				w.ID, w.UserID, w.Payout, err)
		}
	}

	if match.Winner == nil {
		log.Printf("↩️ Pool %s refunded: match %s hit the turn cap with no winner", pool.ID, match.ID)
	} else {
		log.Printf("🏆 Pool %s resolved: %s (%s) takes %.2f", pool.ID, *match.Winner, match.WinnerName, totalPool)
	}
	return nil
}

// settleOutcomes assigns status and payout to every wager in place and
// returns the combined pool. Winner nil means the turn cap was hit with no
// conclusion and every stake is refunded; otherwise the winning side splits
// the whole pool pro-rata by stake.
func settleOutcomes(winner *string, wagers []models.Wager) float64 {
	totalPool := 0.0
	winnerTotal := 0.0
	for _, w := range wagers {
		totalPool += w.Amount
		if winner != nil && w.Side == *winner {
			winnerTotal += w.Amount
		}
	}

	for i := range wagers {
		w := &wagers[i]
		switch {
		case winner == nil:
			w.Status = models.WagerStatusRefunded
			w.Payout = w.Amount
		case w.Side == *winner && winnerTotal > 0:
			w.Status = models.WagerStatusWon
			w.Payout = w.Amount / winnerTotal * totalPool
		default:
			w.Status = models.WagerStatusLost
			w.Payout = 0
		}
	}
	return totalPool
}

// archiveMatch uploads the full ledger to R2 for replay tooling. Failures
// are logged and swallowed — the database is the source of truth.
func (s *WagerService) archiveMatch(match *models.BotMatch) {
	full := *match
	if err := s.DB.Preload("Turns", func(db *gorm.DB) *gorm.DB {
		return db.Order("turn_number ASC")
	}).First(&full, "id = ?", match.ID).Error; err != nil {
		log.Printf("⚠️ Could not load ledger for archive of match %s: %v", match.ID, err)
		return
	}

	key := utils.MatchArchiveKey(full.Fighter1Name, full.Fighter2Name, full.ID)
	url, err := utils.UploadJSONToR2(key, full)
	if err != nil {
		log.Printf("⚠️ Failed to archive match %s ledger: %v", match.ID, err)
		return
	}
	log.Printf("🗄️ Archived match %s ledger to %s", match.ID, url)
}
