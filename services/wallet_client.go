// services/wallet_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// WalletServiceClient talks to the external wallet/ledger service. Funds
// never move inside this system — debits and credits are requests to the
// collaborator, and payout credits are best-effort (the wager rows are the
// durable record).
type WalletServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewWalletServiceClient(baseURL, token string) *WalletServiceClient {
	return &WalletServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Credit asks the wallet service to credit a user (payout or refund).
// reference is the wager ID so the ledger side stays idempotent.
func (c *WalletServiceClient) Credit(userID string, amount float64, reference string) error {
	return c.post("/wallet/credit", userID, amount, reference)
}

// Debit asks the wallet service to take the stake for a placed wager.
func (c *WalletServiceClient) Debit(userID string, amount float64, reference string) error {
	return c.post("/wallet/debit", userID, amount, reference)
}

func (c *WalletServiceClient) post(path, userID string, amount float64, reference string) error {
	url := fmt.Sprintf("%s%s", c.BaseURL, path)

	reqBody := map[string]interface{}{
		"user_id":   userID,
		"amount":    amount,
		"reference": reference,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("WalletService %s returned %d: %s", path, resp.StatusCode, string(body))
		return fmt.Errorf("wallet request failed: %d", resp.StatusCode)
	}

	return nil
}
