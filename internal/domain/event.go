package domain

import "time"

// Event is one row of the transactional outbox. Every successful mutating
// operation appends exactly one event in the same transaction as its state
// change, and an off-chain style indexer drains the log through the events
// endpoint using Seq as its cursor.
//
// Payload holds the event-specific JSON document (see the events package
// for the concrete payload shapes per event type).
type Event struct {
	Seq       uint64    `json:"seq"        gorm:"primaryKey;autoIncrement"`
	Type      string    `json:"type"       gorm:"type:varchar(64);not null;index:idx_events_type"`
	Actor     string    `json:"actor"      gorm:"type:varchar(128);not null"`
	Subject   string    `json:"subject"    gorm:"type:varchar(128);not null"`
	Payload   string    `json:"payload"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }
