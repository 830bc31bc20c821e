package invest

import (
	"fmt"
	"math"
	"strings"
)

// Principal identifies an authenticated caller across the platform.
type Principal struct {
	value string
}

// NewPrincipal validates and normalizes a principal.
func NewPrincipal(raw string) (Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Principal{}, fmt.Errorf("%w: empty value", ErrInvalidPrincipal)
	}
	return Principal{value: trimmed}, nil
}

// String returns the normalized principal.
func (principal Principal) String() string {
	return principal.value
}

// IsZero reports whether the principal is unset.
func (principal Principal) IsZero() bool {
	return principal.value == ""
}

// Role is the caller's platform role.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleGuest, RoleUser, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// String returns the role value.
func (role Role) String() string {
	return string(role)
}

// Account is one registered identity.
type Account struct {
	Principal string
	Role      Role
	Number    *int64
}

// UserProfile holds the caller-editable profile fields.
type UserProfile struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	InvestmentPreference string `json:"investmentPreference"`
}

// Validate checks the fields required before the profile is saved.
func (profile UserProfile) Validate() error {
	if strings.TrimSpace(profile.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if err := validateEmail(profile.Email); err != nil {
		return err
	}
	return nil
}

// IsComplete reports whether every profile field is filled in. Deposit
// eligibility requires a complete profile.
func (profile UserProfile) IsComplete() bool {
	return strings.TrimSpace(profile.Name) != "" &&
		strings.TrimSpace(profile.Email) != "" &&
		strings.TrimSpace(profile.InvestmentPreference) != ""
}

// Wallet holds the caller's balance and accumulated weekly return.
// Amounts are stored in cents and exposed as dollars on the wire.
type Wallet struct {
	BalanceCents      int64
	WeeklyReturnCents int64
}

// InvestmentPlan is one catalogue entry.
type InvestmentPlan struct {
	PlanID                 string  `json:"planId"`
	Name                   string  `json:"name"`
	Description            string  `json:"description"`
	MinimumInvestmentRange string  `json:"minimumInvestmentRange"`
	WeeklyReturn           float64 `json:"weeklyReturn"`
	RiskLevel              string  `json:"riskLevel"`
	AINarrative            string  `json:"aiNarrative"`
}

// AIInsight is one generated market signal shown on the dashboard.
type AIInsight struct {
	SignalType      string  `json:"signalType"`
	Value           float64 `json:"value"`
	Explanation     string  `json:"explanation"`
	Confidence      float64 `json:"confidence"`
	RelevanceScore  float64 `json:"relevanceScore"`
	TimeHorizon     string  `json:"timeHorizon"`
	ImpactPotential string  `json:"impactPotential"`
}

// Lead is one contact-form submission.
type Lead struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks the lead fields the contact form requires.
func (lead Lead) Validate() error {
	if strings.TrimSpace(lead.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLead)
	}
	if err := validateEmail(lead.Email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}
	if strings.TrimSpace(lead.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidLead)
	}
	return nil
}

// DepositRequest is one submitted deposit with its proof screenshot.
type DepositRequest struct {
	Principal  string       `json:"principal"`
	UserID     string       `json:"userId"`
	Profile    *UserProfile `json:"userProfile,omitempty"`
	Screenshot []byte       `json:"screenshot"`
}

// DepositEligibility reports how far the caller is along the deposit
// prerequisites chain.
type DepositEligibility struct {
	IsEligible             bool   `json:"isEligible"`
	RequiresAuthentication bool   `json:"requiresAuthentication"`
	RequiresNumber         bool   `json:"requiresNumber"`
	RequiresProfile        bool   `json:"requiresProfile"`
	Message                string `json:"message"`
}

// TelegramBotConfig configures lead notifications.
type TelegramBotConfig struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
	Active   bool   `json:"active"`
}

// Validate rejects an active config with missing credentials.
func (config TelegramBotConfig) Validate() error {
	if !config.Active {
		return nil
	}
	if strings.TrimSpace(config.BotToken) == "" {
		return fmt.Errorf("%w: bot token is required when active", ErrInvalidBotConfig)
	}
	if strings.TrimSpace(config.ChatID) == "" {
		return fmt.Errorf("%w: chat id is required when active", ErrInvalidBotConfig)
	}
	return nil
}

// DollarsToCents converts a wire amount to the stored representation,
// rejecting non-positive and non-finite values.
func DollarsToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: not finite", ErrInvalidAmount)
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(amount * 100)), nil
}

// CentsToDollars converts a stored amount back to the wire unit.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

func validateEmail(raw string) error {
	trimmed := strings.TrimSpace(raw)
	atIndex := strings.Index(trimmed, "@")
	if atIndex <= 0 || atIndex == len(trimmed)-1 {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidProfile, trimmed)
	}
	if !strings.Contains(trimmed[atIndex+1:], ".") {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidProfile, trimmed)
	}
	return nil
}
