// services/scheduler.go
package services

import (
	"log"
	"time"

	"bot-arena-system/engine"
	"bot-arena-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler runs the periodic lifecycle pass. Every step is a
// conditional write, so overlapping or back-to-back passes are harmless —
// there is no dedicated owner thread per match, only polling.
func (s *MatchService) StartLifecycleScheduler(wagers *WagerService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every few seconds: complete finished matches, lock due pools, settle
	// payouts, roll over to the next match.
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Second),
		gocron.NewTask(func() {
			now := time.Now()

			s.completeFinishedMatches(now)
			wagers.LockDuePools(now)
			wagers.ResolveDueMatches(now)

			if err := s.EnsureActiveMatch(); err != nil {
				log.Printf("[Scheduler] Rollover failed: %v", err)
			}
		}),
	)
}

// completeFinishedMatches flips every active match whose playback has run out.
// N concurrent observers of the same match produce one effective write and
// N−1 no-ops.
func (s *MatchService) completeFinishedMatches(now time.Time) {
	var matches []models.BotMatch
	if err := s.DB.Where("status = ?", models.MatchStatusActive).Find(&matches).Error; err != nil {
		log.Printf("[Scheduler] DB error loading active matches: %v", err)
		return
	}

	for _, m := range matches {
		if !engine.IsFinished(&m, now) {
			continue
		}
		flipped, err := s.CompleteFinishedMatch(m.ID)
		if err != nil {
			log.Printf("[Scheduler] Failed to complete match %s: %v", m.ID, err)
			continue
		}
		if flipped {
			log.Printf("🏁 Match %s completed (%s vs %s, winner: %s)",
				m.ID, m.Fighter1Name, m.Fighter2Name, m.WinnerName)
		}
	}
}
