// Package models describes the SaaS inventory that access reviews are scoped against.
package models

import (
	"time"

	"stackwise/pkg/domain"
)

// User is a person who holds application access.
type User struct {
	ID    domain.UserID `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
}

// Application is a SaaS product in the inventory. AnnualCost is in the
// account currency; 0 when unknown.
type Application struct {
	ID         domain.ApplicationID `json:"id"`
	Name       string               `json:"name"`
	Category   string               `json:"category"`
	AnnualCost float64              `json:"annualCost"`
}

// Grant is one cell of the access matrix: user holds access to application.
type Grant struct {
	UserID        domain.UserID        `json:"userId"`
	ApplicationID domain.ApplicationID `json:"applicationId"`
	GrantedAt     time.Time            `json:"grantedAt"`
}
