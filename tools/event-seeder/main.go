// Command event-seeder generates synthetic events and submits them to a
// running ingest service. Useful for exercising routing, dedup and the
// stats stream during development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	baseURL    = flag.String("url", "http://localhost:8085", "ingest service base URL")
	count      = flag.Int("count", 100, "number of events to generate")
	interval   = flag.Duration("interval", 100*time.Millisecond, "interval between batches")
	batchSize  = flag.Int("batch-size", 10, "events per batch (1 posts single events)")
	eventTypes = flag.String("types", "user,transaction,analytics,system,fraud", "comma-separated categories to generate")
	timeSpread = flag.Duration("time-spread", 0, "spread timestamps over this period (0 for now)")
)

type event struct {
	EventID   string            `json:"eventId,omitempty"`
	EventType string            `json:"eventType"`
	SubjectID string            `json:"subjectId"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]any    `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Source    string            `json:"source,omitempty"`
}

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	categories := strings.Split(*eventTypes, ",")
	log.Printf("Seeding %d events to %s (batch size %d, categories %v)", *count, *baseURL, *batchSize, categories)

	client := &http.Client{Timeout: 10 * time.Second}

	sent, failed := 0, 0
	batch := make([]event, 0, *batchSize)
	for i := 0; i < *count; i++ {
		category := categories[rand.Intn(len(categories))]
		batch = append(batch, generate(category, i))

		if len(batch) >= *batchSize || i == *count-1 {
			if err := send(client, batch); err != nil {
				log.Printf("send failed: %v", err)
				failed += len(batch)
			} else {
				sent += len(batch)
			}
			batch = batch[:0]
			if *interval > 0 && i < *count-1 {
				time.Sleep(*interval)
			}
		}
	}

	log.Printf("Done: %d sent, %d failed", sent, failed)
}

func generate(category string, index int) event {
	ts := time.Now()
	if *timeSpread > 0 {
		ts = ts.Add(-time.Duration(rand.Int63n(int64(*timeSpread))))
	}

	e := event{
		EventID:   uuid.New().String(),
		SubjectID: fmt.Sprintf("user_%03d", rand.Intn(200)),
		Timestamp: ts,
		Source:    "event-seeder",
		Metadata:  map[string]string{"seed_index": fmt.Sprintf("%d", index)},
	}

	switch category {
	case "user":
		e.EventType = "user.signup"
		e.Payload = map[string]any{
			"email":  gofakeit.Email(),
			"source": gofakeit.RandomString([]string{"web", "mobile", "referral"}),
		}
	case "transaction":
		e.EventType = gofakeit.RandomString([]string{
			"transaction.created", "transaction.completed", "transaction.failed",
		})
		e.Payload = map[string]any{
			"amount":   gofakeit.Price(1, 5000),
			"currency": gofakeit.CurrencyShort(),
		}
	case "analytics":
		e.EventType = gofakeit.RandomString([]string{
			"analytics.page.view", "analytics.button.click", "analytics.form.submit",
		})
		e.Payload = map[string]any{
			"url":       gofakeit.URL(),
			"userAgent": gofakeit.UserAgent(),
		}
	case "system":
		e.EventType = gofakeit.RandomString([]string{"system.error", "system.warning"})
		e.Payload = map[string]any{
			"component": gofakeit.AppName(),
			"message":   gofakeit.Sentence(6),
		}
	case "fraud":
		e.EventType = "fraud.detected"
		e.Payload = map[string]any{
			"riskScore": gofakeit.Float64Range(0.5, 1.0),
			"reason":    gofakeit.RandomString([]string{"velocity", "geo_mismatch", "device_change"}),
		}
	default:
		e.EventType = category + ".generated"
		e.Payload = map[string]any{"note": gofakeit.Word()}
	}

	return e
}

func send(client *http.Client, batch []event) error {
	var (
		path string
		body any
	)
	if len(batch) == 1 {
		path = "/api/v1/events"
		body = batch[0]
	} else {
		path = "/api/v1/events/batch"
		body = batch
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(*baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
