// Command genrequests reads a CSV of locations and turns each row into a
// geocode request. Requests are written as a JSON fixture, published to the
// configured source topic, or both.
//
// The CSV needs a Location column; an optional ID column sets the request ID.
//
// Usage:
//
//	go run ./cmd/genrequests -csv places.csv -out data/requests.json
//	KAFKA_BROKERS=localhost:9092 go run ./cmd/genrequests -csv places.csv -publish
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	kafkaadapter "github.com/couchcryptid/geocoding-service/internal/adapter/kafka"
	"github.com/couchcryptid/geocoding-service/internal/config"
	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file with a Location column")
	out := flag.String("out", "", "output path for the JSON request fixture")
	publish := flag.Bool("publish", false, "publish requests to KAFKA_SOURCE_TOPIC")
	assignIDs := flag.Bool("assign-ids", false, "give rows without an ID a random UUID")
	flag.Parse()

	if *csvPath == "" || (*out == "" && !*publish) {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv and one of -out, -publish")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var newID func() string
	if *assignIDs {
		newID = uuid.NewString
	}

	requests, err := readRequests(f, newID)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d requests", len(requests))

	if *out != "" {
		if err := writeJSON(*out, requests); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *publish {
		if err := publishRequests(context.Background(), requests); err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
	}
	return nil
}

// readRequests parses CSV rows into requests. Rows with a blank location are
// skipped. When newID is set it fills in missing IDs.
func readRequests(r io.Reader, newID func() string) ([]domain.GeocodeRequest, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	if _, ok := colIdx["Location"]; !ok {
		return nil, fmt.Errorf("missing Location column")
	}

	requests := make([]domain.GeocodeRequest, 0, len(rows)-1)
	for _, row := range rows[1:] {
		location := get(row, colIdx, "Location")
		if location == "" {
			continue
		}
		id := get(row, colIdx, "ID")
		if id == "" && newID != nil {
			id = newID()
		}
		requests = append(requests, domain.GeocodeRequest{ID: id, Location: location})
	}
	return requests, nil
}

func get(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // fixture file
}

func publishRequests(ctx context.Context, requests []domain.GeocodeRequest) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)

	// Requests go to the topic the service consumes from.
	pubCfg := *cfg
	pubCfg.KafkaSinkTopic = cfg.KafkaSourceTopic
	writer := kafkaadapter.NewWriter(&pubCfg, logger)
	defer writer.Close()

	events := make([]domain.OutputEvent, 0, len(requests))
	for _, req := range requests {
		event, err := domain.SerializeGeocodeRequest(req)
		if err != nil {
			return err
		}
		events = append(events, event)
	}
	if err := writer.LoadBatch(ctx, events); err != nil {
		return err
	}
	logger.Info("published geocode requests", "topic", pubCfg.KafkaSinkTopic, "count", len(events))
	return nil
}
