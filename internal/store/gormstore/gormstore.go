package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NexaProfitLabs/platform/internal/invest"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolationCode   = "23505"
	sqliteConstraintCode    = 19
	botConfigSingletonID    = 1
	errorOperationStore     = "store"
	errorSubjectAccount     = "account"
	errorSubjectProfile     = "profile"
	errorSubjectWallet      = "wallet"
	errorSubjectPlan        = "plan"
	errorSubjectInsight     = "insight"
	errorSubjectLead        = "lead"
	errorSubjectDeposit     = "deposit"
	errorSubjectBotConfig   = "bot_config"
	errorCodeCreate         = "create"
	errorCodeDuplicate      = "duplicate"
	errorCodeGet            = "get"
	errorCodeInvalid        = "invalid"
	errorCodeList           = "list"
	errorCodeSave           = "save"
	errorCodeSeed           = "seed"
	errorCodeUpdate         = "update"
)

// Store implements invest.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore invest.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) GetAccount(ctx context.Context, principal invest.Principal) (invest.Account, bool, error) {
	var model Account
	err := store.db.WithContext(ctx).
		Where("principal = ?", principal.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.Account{}, false, nil
	}
	if err != nil {
		return invest.Account{}, false, wrapStoreError(errorSubjectAccount, errorCodeGet, err)
	}
	account, err := mapAccount(model)
	if err != nil {
		return invest.Account{}, false, wrapStoreError(errorSubjectAccount, errorCodeInvalid, err)
	}
	return account, true, nil
}

func (store *Store) CreateAccount(ctx context.Context, account invest.Account) error {
	model := Account{
		Principal: account.Principal,
		Role:      account.Role.String(),
		Number:    account.Number,
		CreatedAt: time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectAccount, errorCodeDuplicate, err)
	}
	if err != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateAccountRole(ctx context.Context, principal invest.Principal, role invest.Role) error {
	result := store.db.WithContext(ctx).
		Model(&Account{}).
		Where("principal = ?", principal.String()).
		Update("role", role.String())
	if result.Error != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, invest.ErrUnknownUser)
	}
	return nil
}

func (store *Store) SetAccountNumber(ctx context.Context, principal invest.Principal, number int64) error {
	result := store.db.WithContext(ctx).
		Model(&Account{}).
		Where("principal = ?", principal.String()).
		Update("number", number)
	if isUniqueViolation(result.Error) {
		return wrapStoreError(errorSubjectAccount, errorCodeDuplicate, invest.ErrNumberTaken)
	}
	if result.Error != nil {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectAccount, errorCodeUpdate, invest.ErrUnknownUser)
	}
	return nil
}

func (store *Store) GetProfile(ctx context.Context, principal invest.Principal) (invest.UserProfile, bool, error) {
	var model Profile
	err := store.db.WithContext(ctx).
		Where("principal = ?", principal.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.UserProfile{}, false, nil
	}
	if err != nil {
		return invest.UserProfile{}, false, wrapStoreError(errorSubjectProfile, errorCodeGet, err)
	}
	return invest.UserProfile{
		Name:                 model.Name,
		Email:                model.Email,
		InvestmentPreference: model.InvestmentPreference,
	}, true, nil
}

func (store *Store) SaveProfile(ctx context.Context, principal invest.Principal, profile invest.UserProfile) error {
	model := Profile{
		Principal:            principal.String(),
		Name:                 profile.Name,
		Email:                profile.Email,
		InvestmentPreference: profile.InvestmentPreference,
		UpdatedAt:            time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			UpdateAll: true,
		}).
		Create(&model).Error
	if err != nil {
		return wrapStoreError(errorSubjectProfile, errorCodeSave, err)
	}
	return nil
}

func (store *Store) FindPrincipalByEmail(ctx context.Context, email string) (invest.Principal, bool, error) {
	var model Profile
	err := store.db.WithContext(ctx).
		Where("email = ?", email).
		Order("updated_at DESC").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.Principal{}, false, nil
	}
	if err != nil {
		return invest.Principal{}, false, wrapStoreError(errorSubjectProfile, errorCodeGet, err)
	}
	principal, err := invest.NewPrincipal(model.Principal)
	if err != nil {
		return invest.Principal{}, false, wrapStoreError(errorSubjectProfile, errorCodeInvalid, err)
	}
	return principal, true, nil
}

func (store *Store) GetWallet(ctx context.Context, principal invest.Principal) (invest.Wallet, bool, error) {
	var model Wallet
	err := store.db.WithContext(ctx).
		Where("principal = ?", principal.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.Wallet{}, false, nil
	}
	if err != nil {
		return invest.Wallet{}, false, wrapStoreError(errorSubjectWallet, errorCodeGet, err)
	}
	return invest.Wallet{
		BalanceCents:      model.BalanceCents,
		WeeklyReturnCents: model.WeeklyReturnCents,
	}, true, nil
}

func (store *Store) SaveWallet(ctx context.Context, principal invest.Principal, wallet invest.Wallet) error {
	model := Wallet{
		Principal:         principal.String(),
		BalanceCents:      wallet.BalanceCents,
		WeeklyReturnCents: wallet.WeeklyReturnCents,
		UpdatedAt:         time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			UpdateAll: true,
		}).
		Create(&model).Error
	if err != nil {
		return wrapStoreError(errorSubjectWallet, errorCodeSave, err)
	}
	return nil
}

func (store *Store) ListPlans(ctx context.Context) ([]invest.InvestmentPlan, error) {
	var rows []Plan
	err := store.db.WithContext(ctx).
		Order("weekly_return ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectPlan, errorCodeList, err)
	}
	plans := make([]invest.InvestmentPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, mapPlan(row))
	}
	return plans, nil
}

func (store *Store) GetPlan(ctx context.Context, planID string) (invest.InvestmentPlan, bool, error) {
	var model Plan
	err := store.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.InvestmentPlan{}, false, nil
	}
	if err != nil {
		return invest.InvestmentPlan{}, false, wrapStoreError(errorSubjectPlan, errorCodeGet, err)
	}
	return mapPlan(model), true, nil
}

func (store *Store) SeedPlans(ctx context.Context, plans []invest.InvestmentPlan) error {
	for _, plan := range plans {
		model := Plan{
			PlanID:                 plan.PlanID,
			Name:                   plan.Name,
			Description:            plan.Description,
			MinimumInvestmentRange: plan.MinimumInvestmentRange,
			WeeklyReturn:           plan.WeeklyReturn,
			RiskLevel:              plan.RiskLevel,
			AINarrative:            plan.AINarrative,
			CreatedAt:              time.Now().UTC(),
		}
		err := store.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "plan_id"}},
				DoNothing: true,
			}).
			Create(&model).Error
		if err != nil {
			return wrapStoreError(errorSubjectPlan, errorCodeSeed, err)
		}
	}
	return nil
}

func (store *Store) ListInsights(ctx context.Context) ([]invest.AIInsight, error) {
	var rows []Insight
	err := store.db.WithContext(ctx).
		Order("relevance_score DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectInsight, errorCodeList, err)
	}
	insights := make([]invest.AIInsight, 0, len(rows))
	for _, row := range rows {
		insights = append(insights, invest.AIInsight{
			SignalType:      row.SignalType,
			Value:           row.Value,
			Explanation:     row.Explanation,
			Confidence:      row.Confidence,
			RelevanceScore:  row.RelevanceScore,
			TimeHorizon:     row.TimeHorizon,
			ImpactPotential: row.ImpactPotential,
		})
	}
	return insights, nil
}

func (store *Store) SeedInsights(ctx context.Context, insights []invest.AIInsight) error {
	var existing int64
	if err := store.db.WithContext(ctx).Model(&Insight{}).Count(&existing).Error; err != nil {
		return wrapStoreError(errorSubjectInsight, errorCodeSeed, err)
	}
	if existing > 0 {
		return nil
	}
	for _, insight := range insights {
		model := Insight{
			SignalType:      insight.SignalType,
			Value:           insight.Value,
			Explanation:     insight.Explanation,
			Confidence:      insight.Confidence,
			RelevanceScore:  insight.RelevanceScore,
			TimeHorizon:     insight.TimeHorizon,
			ImpactPotential: insight.ImpactPotential,
			CreatedAt:       time.Now().UTC(),
		}
		if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
			return wrapStoreError(errorSubjectInsight, errorCodeSeed, err)
		}
	}
	return nil
}

func (store *Store) InsertLead(ctx context.Context, lead invest.Lead) error {
	model := Lead{
		Name:      lead.Name,
		Email:     lead.Email,
		Message:   lead.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectLead, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) ListLeads(ctx context.Context) ([]invest.Lead, error) {
	var rows []Lead
	err := store.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectLead, errorCodeList, err)
	}
	leads := make([]invest.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, invest.Lead{
			Name:    row.Name,
			Email:   row.Email,
			Message: row.Message,
		})
	}
	return leads, nil
}

func (store *Store) InsertDeposit(ctx context.Context, deposit invest.DepositRequest) error {
	var profileJSON datatypes.JSON
	if deposit.Profile != nil {
		raw, err := json.Marshal(deposit.Profile)
		if err != nil {
			return wrapStoreError(errorSubjectDeposit, errorCodeInvalid, err)
		}
		profileJSON = datatypes.JSON(raw)
	}
	model := Deposit{
		Principal:  deposit.Principal,
		UserID:     deposit.UserID,
		Profile:    profileJSON,
		Screenshot: deposit.Screenshot,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectDeposit, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) ListDeposits(ctx context.Context) ([]invest.DepositRequest, error) {
	var rows []Deposit
	err := store.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectDeposit, errorCodeList, err)
	}
	deposits := make([]invest.DepositRequest, 0, len(rows))
	for _, row := range rows {
		deposit := invest.DepositRequest{
			Principal:  row.Principal,
			UserID:     row.UserID,
			Screenshot: row.Screenshot,
		}
		if len(row.Profile) > 0 {
			var profile invest.UserProfile
			if err := json.Unmarshal(row.Profile, &profile); err != nil {
				return nil, wrapStoreError(errorSubjectDeposit, errorCodeInvalid, err)
			}
			deposit.Profile = &profile
		}
		deposits = append(deposits, deposit)
	}
	return deposits, nil
}

func (store *Store) GetBotConfig(ctx context.Context) (invest.TelegramBotConfig, bool, error) {
	var model BotConfig
	err := store.db.WithContext(ctx).
		Where("config_id = ?", botConfigSingletonID).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invest.TelegramBotConfig{}, false, nil
	}
	if err != nil {
		return invest.TelegramBotConfig{}, false, wrapStoreError(errorSubjectBotConfig, errorCodeGet, err)
	}
	return invest.TelegramBotConfig{
		BotToken: model.BotToken,
		ChatID:   model.ChatID,
		Active:   model.Active,
	}, true, nil
}

func (store *Store) SaveBotConfig(ctx context.Context, config invest.TelegramBotConfig) error {
	model := BotConfig{
		ConfigID:  botConfigSingletonID,
		BotToken:  config.BotToken,
		ChatID:    config.ChatID,
		Active:    config.Active,
		UpdatedAt: time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
	if err != nil {
		return wrapStoreError(errorSubjectBotConfig, errorCodeSave, err)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return invest.WrapError(errorOperationStore, subject, code, err)
}

func mapAccount(model Account) (invest.Account, error) {
	role, err := invest.ParseRole(model.Role)
	if err != nil {
		return invest.Account{}, err
	}
	return invest.Account{
		Principal: model.Principal,
		Role:      role,
		Number:    model.Number,
	}, nil
}

func mapPlan(model Plan) invest.InvestmentPlan {
	return invest.InvestmentPlan{
		PlanID:                 model.PlanID,
		Name:                   model.Name,
		Description:            model.Description,
		MinimumInvestmentRange: model.MinimumInvestmentRange,
		WeeklyReturn:           model.WeeklyReturn,
		RiskLevel:              model.RiskLevel,
		AINarrative:            model.AINarrative,
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
