// workers/wallet_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"bot-arena-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletSyncClient polls the external wallet service for balance changes and
// mirrors them into wallet_mirror. Wager placement reads only the mirror, so
// a wallet-service outage degrades to stale balances instead of failed reads.
type WalletSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewWalletSyncClient(db *gorm.DB) *WalletSyncClient {
	baseURL := os.Getenv("WALLET_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("WALLET_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("ARENA_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable is required for wallet sync")
	}

	return &WalletSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *WalletSyncClient) GetChangedBalances(ctx context.Context, since time.Time) ([]models.WalletMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/balances", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call wallet service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("wallet service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Balances []models.WalletMirror `json:"balances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode wallet service response: %w", err)
	}

	return response.Balances, nil
}

// PollWallets mirrors balance changes into the DB on a fixed interval until
// the context is cancelled.
func PollWallets(ctx context.Context, client *WalletSyncClient, pollInterval time.Duration) {
	log.Println("Starting wallet balance polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Wallet polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			balances, err := client.GetChangedBalances(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling wallet balances: %v", err)
				continue
			}

			count := len(balances)
			if count == 0 {
				continue
			}

			// Bulk upsert keyed on the user — one statement per batch.
			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"currency",
						"balance",
						"last_synced_at",
						"updated_at",
					}),
				},
			).Create(&balances).Error; err != nil {
				log.Printf("❌ Failed to upsert %d balance(s) into wallet_mirror: %v", count, err)
				// Do NOT advance lastSyncTime on failure — retry the same
				// window next tick.
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d balance(s) into wallet_mirror table.", count)
		}
	}
}
