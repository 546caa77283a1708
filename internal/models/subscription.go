package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

type Subscription struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	UserID        uuid.UUID          `db:"user_id" json:"userId"`
	PlanID        uuid.UUID          `db:"plan_id" json:"planId"`
	Status        SubscriptionStatus `db:"status" json:"status"`
	PaymentMethod string             `db:"payment_method" json:"paymentMethod"`
	ExternalRef   string             `db:"external_ref" json:"externalRef"`
	EndDate       *time.Time         `db:"end_date" json:"endDate"`
	RenewsAt      *time.Time         `db:"renews_at" json:"renewsAt"`
	CanceledAt    *time.Time         `db:"canceled_at" json:"canceledAt"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
}
