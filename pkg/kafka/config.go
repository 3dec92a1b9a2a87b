package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers  []string
	ClientID string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "label-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains the Kafka topic names published by this service
var Topics = struct {
	LabelEvents     string
	BordereauEvents string
	OrderEvents     string
}{
	LabelEvents:     "parcel.labels.events",
	BordereauEvents: "parcel.bordereaux.events",
	OrderEvents:     "parcel.orders.events",
}
