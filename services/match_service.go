// services/match_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"bot-arena-system/engine"
	"bot-arena-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrActiveMatchExists is returned when a create attempt loses the race
// against the single-active-match constraint. The partial unique index on
// status='active' is the real guard — no process-local state backs this.
var ErrActiveMatchExists = errors.New("an active match already exists")

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// MatchSyncInfo is the late-joiner payload: everything a client needs to
// start rendering mid-match from elapsed time alone.
type MatchSyncInfo struct {
	Match            *models.BotMatch `json:"match"`
	CurrentTurnIndex int              `json:"current_turn_index"`
	ElapsedMs        int64            `json:"elapsed_ms"`
	IsFinished       bool             `json:"is_finished"`
	LifecycleState   string           `json:"lifecycle_state"`
}

// CreateBotMatch simulates and persists a new match atomically. The full
// ledger is written before the match becomes visible to any reader; a
// persistence failure rolls the whole thing back — no partial matches.
//
// When seed is empty a fresh UUID doubles as both ID and seed (they are
// equal by convention); an explicit seed becomes the match ID.
func (s *MatchService) CreateBotMatch(seed, fighter1ID, fighter2ID string) (*models.BotMatch, error) {
	id := seed
	if id == "" {
		id = uuid.NewString()
		seed = id
	}

	match, err := engine.Simulate(id, seed, fighter1ID, fighter2ID)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Creating the match row inserts the turn ledger with it; the
		// partial unique index on status='active' makes this a true
		// create-if-absent, not a check-then-act.
		if err := tx.Create(match).Error; err != nil {
			if strings.Contains(err.Error(), "idx_bot_matches_single_active") ||
				strings.Contains(err.Error(), "duplicate key") {
				return ErrActiveMatchExists
			}
			return err
		}

		pool := &models.WagerPool{
			ID:      uuid.NewString(),
			MatchID: match.ID,
			Status:  models.PoolStatusOpen,
		}
		return tx.Create(pool).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Created match %s: %s vs %s (%d turns, seed %s)",
		match.ID, match.Fighter1Name, match.Fighter2Name, match.TotalTurns, match.Seed)
	return match, nil
}

// CompleteFinishedMatch flips active → completed with a conditional update.
// Zero rows affected means another observer won the race — that is the
// expected outcome of the idempotent design, not an error.
func (s *MatchService) CompleteFinishedMatch(matchID string) (bool, error) {
	result := s.DB.Model(&models.BotMatch{}).
		Where("id = ? AND status = ?", matchID, models.MatchStatusActive).
		Update("status", models.MatchStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// EnsureActiveMatch creates the next match when none is running (the
// scheduler's rollover step). Losing the create race to a concurrent pass is
// treated as success.
func (s *MatchService) EnsureActiveMatch() error {
	var count int64
	if err := s.DB.Model(&models.BotMatch{}).
		Where("status = ?", models.MatchStatusActive).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := s.CreateBotMatch("", "", ""); err != nil {
		if errors.Is(err, ErrActiveMatchExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *MatchService) findMatchWithTurns(id string) (*models.BotMatch, error) {
	var match models.BotMatch
	err := s.DB.
		Preload("Turns", func(db *gorm.DB) *gorm.DB {
			return db.Order("turn_number ASC")
		}).
		First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *MatchService) buildSyncInfo(m *models.BotMatch, now time.Time) MatchSyncInfo {
	return MatchSyncInfo{
		Match:            m,
		CurrentTurnIndex: engine.CurrentTurnIndex(m, now),
		ElapsedMs:        engine.ElapsedMs(m, now),
		IsFinished:       engine.IsFinished(m, now),
		LifecycleState:   engine.LifecycleState(m, now),
	}
}

// --- Handlers ---

// CreateMatch starts a new match on demand (admin). Fighters and seed are
// optional; omitted values are drawn from the seed.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	var req struct {
		Fighter1ID string `json:"fighter1_id"`
		Fighter2ID string `json:"fighter2_id"`
		Seed       string `json:"seed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	match, err := s.CreateBotMatch(req.Seed, req.Fighter1ID, req.Fighter2ID)
	if err != nil {
		if errors.Is(err, ErrActiveMatchExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "an active match is already running"})
		}
		if strings.HasPrefix(err.Error(), "unknown character") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ Failed to create match: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create match"})
	}

	return c.Status(fiber.StatusCreated).JSON(match)
}

// GetCurrentMatch returns the running match with its sync info. The first
// reader to observe a finished-but-active match triggers the one-time
// completion flip (first-writer-wins; concurrent observers no-op).
func (s *MatchService) GetCurrentMatch(c *fiber.Ctx) error {
	var match models.BotMatch
	err := s.DB.
		Preload("Turns", func(db *gorm.DB) *gorm.DB {
			return db.Order("turn_number ASC")
		}).
		Where("status = ?", models.MatchStatusActive).
		Order("created_at DESC").
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no active match"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	if engine.IsFinished(&match, now) {
		if flipped, err := s.CompleteFinishedMatch(match.ID); err != nil {
			// Flip failed: report the row as it still is, not as resolved.
			log.Printf("⚠️ Failed to complete match %s: %v", match.ID, err)
		} else {
			if flipped {
				log.Printf("🏁 Match %s completed (observed by reader)", match.ID)
			}
			// Zero rows means another observer already flipped it.
			match.Status = models.MatchStatusCompleted
		}
	}

	return c.JSON(s.buildSyncInfo(&match, now))
}

// GetMatchByID returns a match and its full ledger.
func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	match, err := s.findMatchWithTurns(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(match)
}

// GetMatchSyncInfo serves late joiners: match plus the current turn index
// derived purely from elapsed time.
func (s *MatchService) GetMatchSyncInfo(c *fiber.Ctx) error {
	match, err := s.findMatchWithTurns(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(s.buildSyncInfo(match, time.Now()))
}

// GetBettingStatus is the countdown payload for the wagering UI.
func (s *MatchService) GetBettingStatus(c *fiber.Ctx) error {
	var match models.BotMatch
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(engine.GetBettingStatus(&match, time.Now()))
}

// GetCharacters lists the playable archetype roster.
func (s *MatchService) GetCharacters(c *fiber.Ctx) error {
	return c.JSON(engine.Roster)
}
