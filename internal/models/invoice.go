package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice is the output artifact of the ingestion pipeline. RawText and
// StructuredData are written once at creation and never mutated; the only
// mutation the API allows is deletion by the owner.
type Invoice struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	UserID         uuid.UUID       `db:"user_id" json:"userId"`
	CategoryID     uuid.UUID       `db:"category_id" json:"categoryId"`
	TypeID         uuid.UUID       `db:"type_id" json:"typeId"`
	RawText        string          `db:"raw_text" json:"text"`
	StructuredData json.RawMessage `db:"structured_data" json:"jsonData"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
}
