package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Sends a Payrexx-shaped webhook notification to a local endpoint for
// manual testing. Payrexx webhooks carry no signature; the server
// authenticates them by re-fetching the invoice from the API.

type invoicePayload struct {
	ReferenceID      string `json:"referenceId"`
	PaymentRequestID string `json:"paymentRequestId"`
	Status           string `json:"status"`
	Amount           int    `json:"amount"`
	Currency         string `json:"currency"`
}

type transactionPayload struct {
	ID      int            `json:"id"`
	Status  string         `json:"status"`
	Invoice invoicePayload `json:"invoice"`
}

type webhookPayload struct {
	Transaction transactionPayload `json:"transaction"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/payrexx", "Webhook URL")
	txID := flag.Int("transaction-id", 1, "Transaction id")
	status := flag.String("status", "confirmed", "Invoice status (waiting, confirmed, authorized, reserved, refunded, partially-refunded, cancelled, declined, chargeback, error)")
	reference := flag.String("reference", "ORD-1001", "Order number used as reference id")
	invoiceID := flag.String("invoice-id", "42", "Invoice id (paymentRequestId)")
	amount := flag.Int("amount", 5000, "Amount in cents")
	currency := flag.String("currency", "CHF", "Currency")
	dryRun := flag.Bool("dry-run", false, "Only print the body, don't send")

	flag.Parse()

	payload := webhookPayload{
		Transaction: transactionPayload{
			ID:     *txID,
			Status: *status,
			Invoice: invoicePayload{
				ReferenceID:      *reference,
				PaymentRequestID: *invoiceID,
				Status:           *status,
				Amount:           *amount,
				Currency:         *currency,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
