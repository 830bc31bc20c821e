package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account represents the accounts table.
type Account struct {
	Principal string    `gorm:"primaryKey"`
	Role      string    `gorm:"not null"`
	Number    *int64    `gorm:"index:uniq_account_number,unique"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Account) TableName() string { return "accounts" }

// Profile represents the profiles table.
type Profile struct {
	Principal            string    `gorm:"primaryKey"`
	Name                 string    `gorm:"not null"`
	Email                string    `gorm:"not null;index:idx_profiles_email"`
	InvestmentPreference string
	UpdatedAt            time.Time `gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

// Wallet represents the wallets table. Amounts are cents.
type Wallet struct {
	Principal         string    `gorm:"primaryKey"`
	BalanceCents      int64     `gorm:"not null"`
	WeeklyReturnCents int64     `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (Wallet) TableName() string { return "wallets" }

// Plan represents the investment_plans table.
type Plan struct {
	PlanID                 string    `gorm:"primaryKey"`
	Name                   string    `gorm:"not null"`
	Description            string
	MinimumInvestmentRange string
	WeeklyReturn           float64   `gorm:"not null"`
	RiskLevel              string
	AINarrative            string
	CreatedAt              time.Time `gorm:"not null"`
}

func (Plan) TableName() string { return "investment_plans" }

// Insight represents the ai_insights table.
type Insight struct {
	InsightID       string    `gorm:"type:uuid;primaryKey"`
	SignalType      string    `gorm:"not null"`
	Value           float64
	Explanation     string
	Confidence      float64
	RelevanceScore  float64
	TimeHorizon     string
	ImpactPotential string
	CreatedAt       time.Time `gorm:"not null"`
}

func (Insight) TableName() string { return "ai_insights" }

func (insight *Insight) BeforeCreate(tx *gorm.DB) error {
	if insight.InsightID == "" {
		insight.InsightID = uuid.NewString()
	}
	return nil
}

// Lead represents the leads table.
type Lead struct {
	LeadID    string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_leads_created"`
}

func (Lead) TableName() string { return "leads" }

func (lead *Lead) BeforeCreate(tx *gorm.DB) error {
	if lead.LeadID == "" {
		lead.LeadID = uuid.NewString()
	}
	return nil
}

// Deposit represents the deposit_requests table. The submitter's
// profile is captured as JSON at submission time.
type Deposit struct {
	DepositID  string         `gorm:"type:uuid;primaryKey"`
	Principal  string         `gorm:"not null;index:idx_deposits_principal"`
	UserID     string         `gorm:"not null"`
	Profile    datatypes.JSON
	Screenshot []byte         `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}

func (Deposit) TableName() string { return "deposit_requests" }

func (deposit *Deposit) BeforeCreate(tx *gorm.DB) error {
	if deposit.DepositID == "" {
		deposit.DepositID = uuid.NewString()
	}
	return nil
}

// BotConfig represents the telegram_bot_config singleton row.
type BotConfig struct {
	ConfigID  int64     `gorm:"primaryKey"`
	BotToken  string
	ChatID    string
	Active    bool
	UpdatedAt time.Time `gorm:"not null"`
}

func (BotConfig) TableName() string { return "telegram_bot_config" }

// Models lists every table for schema migration.
func Models() []any {
	return []any{
		&Account{},
		&Profile{},
		&Wallet{},
		&Plan{},
		&Insight{},
		&Lead{},
		&Deposit{},
		&BotConfig{},
	}
}
