package dto

import "time"

type CreateSubscriptionRequest struct {
	PlanID        string     `json:"planId" validate:"required"`
	PaymentMethod string     `json:"paymentMethod"`
	ExternalRef   string     `json:"externalRef"`
	EndDate       *time.Time `json:"endDate"`
}

type UpdateSubscriptionRequest struct {
	PlanID        *string    `json:"planId"`
	Status        *string    `json:"status"`
	EndDate       *time.Time `json:"endDate"`
	RenewsAt      *time.Time `json:"renewsAt"`
	PaymentMethod *string    `json:"paymentMethod"`
}
