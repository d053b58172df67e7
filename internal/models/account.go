package models

import "time"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanMonthly  Plan = "monthly"
	PlanYearly   Plan = "yearly"
	PlanAcademia Plan = "academia"
	PlanAdmin    Plan = "admin"
)

// UnlimitedAttempts is stored for plans without a cap.
const UnlimitedAttempts = -1

// Allowance is the number of attempts granted when a plan is assigned.
func (p Plan) Allowance() int {
	switch p {
	case PlanMonthly:
		return 15
	case PlanYearly:
		return 100
	case PlanAcademia:
		return 200
	case PlanAdmin:
		return UnlimitedAttempts
	default:
		return 3
	}
}

type Account struct {
	UserID       string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	Email        string    `gorm:"column:email;type:text;index" json:"email"`
	Plan         Plan      `gorm:"column:plan;type:text" json:"plan"`
	AttemptsLeft int       `gorm:"column:attempts_left;type:integer" json:"attempts_left"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }
