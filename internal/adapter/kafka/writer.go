package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/geo-linkage-etl/internal/config"
	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
)

const batchSize = 500

// Writer publishes linked rows to a Kafka topic, one message per row.
// It implements pipeline.Loader.
type Writer struct {
	writer   *kafkago.Writer
	decimals int
	logger   *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, decimals: domain.Decimals(cfg.GridResolution), logger: logger}
}

// LinkedRecord is the JSON payload of one published row. Values maps each
// column to its value; missing values are null.
type LinkedRecord struct {
	RunID     string                  `json:"run_id"`
	Date      string                  `json:"date"`
	Longitude float64                 `json:"longitude"`
	Latitude  float64                 `json:"latitude"`
	Values    map[string]domain.Value `json:"values"`
}

// Load serializes the table and publishes it in batches of WriteMessages calls.
func (w *Writer) Load(ctx context.Context, run domain.RunInfo, table domain.Table) error {
	if len(table.Rows) == 0 {
		return nil
	}
	processedAt := domain.Now()
	cols := table.Columns()

	msgs := make([]kafkago.Message, 0, min(batchSize, len(table.Rows)))
	for i, row := range table.Rows {
		msg, err := serializeToMessage(run, processedAt, cols, row, w.decimals)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize || i == len(table.Rows)-1 {
			if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish linked rows: %w", err)
			}
			msgs = msgs[:0]
		}
	}

	w.logger.Info("linked rows published", "run_id", run.ID, "topic", w.writer.Topic, "rows", len(table.Rows))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a row by date and grid coordinates so that reruns
// land on the same partition.
func messageKey(row domain.MatchedRow, decimals int) string {
	return row.Date.Format("2006-01-02") + "|" +
		strconv.FormatFloat(row.Lon, 'f', decimals, 64) + "|" +
		strconv.FormatFloat(row.Lat, 'f', decimals, 64)
}

// serializeToMessage marshals a MatchedRow into a Kafka message.
func serializeToMessage(run domain.RunInfo, processedAt time.Time, cols []string, row domain.MatchedRow, decimals int) (kafkago.Message, error) {
	values := make(map[string]domain.Value, len(cols))
	values[cols[0]] = row.Value
	for j, v := range row.Overlays {
		values[cols[j+1]] = v
	}
	lon, _ := strconv.ParseFloat(strconv.FormatFloat(row.Lon, 'f', decimals, 64), 64)
	lat, _ := strconv.ParseFloat(strconv.FormatFloat(row.Lat, 'f', decimals, 64), 64)

	data, err := json.Marshal(LinkedRecord{
		RunID:     run.ID,
		Date:      row.Date.Format("2006-01-02"),
		Longitude: lon,
		Latitude:  lat,
		Values:    values,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize linked row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(row, decimals)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(run.ID)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
