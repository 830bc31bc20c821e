// Package investclient is the typed HTTP client for the actor API.
// The gateway treats it as the remote actor: one method per operation,
// a timeout per call, and error envelopes decoded into domain errors.
package investclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NexaProfitLabs/platform/internal/invest"
	"github.com/NexaProfitLabs/platform/internal/investapi"
)

// DefaultTimeout bounds each actor call.
const DefaultTimeout = 10 * time.Second

var errEmptyBaseURL = errors.New("investclient: empty base url")

// APIError is a decoded error envelope. Error returns the backend
// message verbatim so callers can render it; Unwrap exposes the
// matching domain sentinel when the code maps to one.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (apiError *APIError) Error() string {
	if apiError.Message != "" {
		return apiError.Message
	}
	return fmt.Sprintf("actor call failed with status %d", apiError.Status)
}

func (apiError *APIError) Unwrap() error {
	return invest.ErrOfCode(apiError.Code)
}

// Client calls the actor API on behalf of end users.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	timeout      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) {
		if httpClient != nil {
			client.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.timeout = timeout
		}
	}
}

// New wires a Client against the actor API base URL.
func New(baseURL string, serviceToken string, options ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errEmptyBaseURL
	}
	client := &Client{
		baseURL:      trimmed,
		serviceToken: serviceToken,
		httpClient:   &http.Client{},
		timeout:      DefaultTimeout,
	}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client, nil
}

// RegisterAuthenticatedUser performs the idempotent registration call.
func (client *Client) RegisterAuthenticatedUser(ctx context.Context, caller string) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/register", caller, nil, nil)
}

// RegisterNumber registers the caller's unique number.
func (client *Client) RegisterNumber(ctx context.Context, caller string, number int64) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/register-number", caller, map[string]any{"number": number}, nil)
}

// CallerNumber returns the caller's registered number, nil when unset.
func (client *Client) CallerNumber(ctx context.Context, caller string) (*int64, error) {
	var response struct {
		Number *int64 `json:"number"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/number", caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Number, nil
}

// CallerProfile returns the caller's profile, nil until saved.
func (client *Client) CallerProfile(ctx context.Context, caller string) (*invest.UserProfile, error) {
	var response struct {
		Profile *invest.UserProfile `json:"profile"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/profile", caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Profile, nil
}

// SaveCallerProfile stores the caller's profile.
func (client *Client) SaveCallerProfile(ctx context.Context, caller string, profile invest.UserProfile) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/profile", caller, profile, nil)
}

// UserProfile returns another user's profile. Admin only.
func (client *Client) UserProfile(ctx context.Context, caller string, target string) (*invest.UserProfile, error) {
	var response struct {
		Profile *invest.UserProfile `json:"profile"`
	}
	path := "/v1/actor/users/" + url.PathEscape(target) + "/profile"
	if err := client.call(ctx, http.MethodGet, path, caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Profile, nil
}

// CallerRole returns the caller's role.
func (client *Client) CallerRole(ctx context.Context, caller string) (invest.Role, error) {
	var response struct {
		Role string `json:"role"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/role", caller, nil, &response); err != nil {
		return "", err
	}
	return invest.ParseRole(response.Role)
}

// IsCallerAdmin reports whether the caller holds the admin role.
func (client *Client) IsCallerAdmin(ctx context.Context, caller string) (bool, error) {
	var response struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/is-admin", caller, nil, &response); err != nil {
		return false, err
	}
	return response.IsAdmin, nil
}

// AssignRole sets a user's role. Admin only.
func (client *Client) AssignRole(ctx context.Context, caller string, target string, role invest.Role) error {
	body := map[string]any{"principal": target, "role": role.String()}
	return client.call(ctx, http.MethodPost, "/v1/actor/roles", caller, body, nil)
}

// CallerWalletBalance returns the caller's balance in dollars, nil
// until the wallet is initialized.
func (client *Client) CallerWalletBalance(ctx context.Context, caller string) (*float64, error) {
	return client.walletFigure(ctx, "/v1/actor/wallet/balance", caller)
}

// CallerWeeklyReturn returns the caller's weekly return in dollars,
// nil until the wallet is initialized.
func (client *Client) CallerWeeklyReturn(ctx context.Context, caller string) (*float64, error) {
	return client.weeklyFigure(ctx, "/v1/actor/wallet/weekly-return", caller)
}

// UserWalletBalance returns another user's balance. Admin only.
func (client *Client) UserWalletBalance(ctx context.Context, caller string, target string) (*float64, error) {
	return client.walletFigure(ctx, "/v1/actor/users/"+url.PathEscape(target)+"/wallet/balance", caller)
}

// UserWeeklyReturn returns another user's weekly return. Admin only.
func (client *Client) UserWeeklyReturn(ctx context.Context, caller string, target string) (*float64, error) {
	return client.weeklyFigure(ctx, "/v1/actor/users/"+url.PathEscape(target)+"/wallet/weekly-return", caller)
}

// InitializeCallerWallet creates the caller's wallet when missing.
func (client *Client) InitializeCallerWallet(ctx context.Context, caller string) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/wallet/initialize", caller, nil, nil)
}

// CreditUserWallet adds to a user's balance. Admin only.
func (client *Client) CreditUserWallet(ctx context.Context, caller string, target string, amount float64) error {
	body := map[string]any{"principal": target, "amount": amount}
	return client.call(ctx, http.MethodPost, "/v1/actor/wallet/credit", caller, body, nil)
}

// SetWalletBalance overwrites a user's balance. Admin only.
func (client *Client) SetWalletBalance(ctx context.Context, caller string, target string, balance float64) error {
	body := map[string]any{"principal": target, "balance": balance}
	return client.call(ctx, http.MethodPost, "/v1/actor/wallet/balance", caller, body, nil)
}

// SetWalletBalanceByEmail overwrites a user's balance looked up by
// profile email and returns the principal the backend resolved the
// email to. Admin only.
func (client *Client) SetWalletBalanceByEmail(ctx context.Context, caller string, email string, balance float64) (string, error) {
	body := map[string]any{"email": email, "balance": balance}
	var response struct {
		Principal string `json:"principal"`
	}
	if err := client.call(ctx, http.MethodPost, "/v1/actor/wallet/balance", caller, body, &response); err != nil {
		return "", err
	}
	return response.Principal, nil
}

// InvestmentPlans lists the plan catalogue.
func (client *Client) InvestmentPlans(ctx context.Context) ([]invest.InvestmentPlan, error) {
	var response struct {
		Plans []invest.InvestmentPlan `json:"plans"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/plans", "", nil, &response); err != nil {
		return nil, err
	}
	return response.Plans, nil
}

// PurchaseInvestmentPlan invests amount dollars into the plan.
func (client *Client) PurchaseInvestmentPlan(ctx context.Context, caller string, planID string, amount float64) error {
	body := map[string]any{"planId": planID, "amount": amount}
	return client.call(ctx, http.MethodPost, "/v1/actor/plans/purchase", caller, body, nil)
}

// AIInsights lists the dashboard insight set.
func (client *Client) AIInsights(ctx context.Context) ([]invest.AIInsight, error) {
	var response struct {
		Insights []invest.AIInsight `json:"insights"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/insights", "", nil, &response); err != nil {
		return nil, err
	}
	return response.Insights, nil
}

// SubmitLead submits a contact-form lead.
func (client *Client) SubmitLead(ctx context.Context, lead invest.Lead) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/leads", "", lead, nil)
}

// Leads lists submitted leads. Admin only.
func (client *Client) Leads(ctx context.Context, caller string) ([]invest.Lead, error) {
	var response struct {
		Leads []invest.Lead `json:"leads"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/leads", caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Leads, nil
}

// CheckDepositEligibility walks the deposit prerequisites chain.
func (client *Client) CheckDepositEligibility(ctx context.Context, caller string) (invest.DepositEligibility, error) {
	var response struct {
		Eligibility invest.DepositEligibility `json:"eligibility"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/deposits/eligibility", caller, nil, &response); err != nil {
		return invest.DepositEligibility{}, err
	}
	return response.Eligibility, nil
}

// SubmitDeposit uploads a deposit screenshot and returns the
// confirmation message.
func (client *Client) SubmitDeposit(ctx context.Context, caller string, screenshot []byte) (string, error) {
	body := map[string]any{"screenshot": base64.StdEncoding.EncodeToString(screenshot)}
	var response struct {
		Message string `json:"message"`
	}
	if err := client.call(ctx, http.MethodPost, "/v1/actor/deposits", caller, body, &response); err != nil {
		return "", err
	}
	return response.Message, nil
}

// DepositRequests lists submitted deposits. Admin only.
func (client *Client) DepositRequests(ctx context.Context, caller string) ([]invest.DepositRequest, error) {
	var response struct {
		Deposits []invest.DepositRequest `json:"deposits"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/deposits", caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Deposits, nil
}

// TelegramConfig returns the bot config. Admin only.
func (client *Client) TelegramConfig(ctx context.Context, caller string) (invest.TelegramBotConfig, error) {
	var response struct {
		Config invest.TelegramBotConfig `json:"config"`
	}
	if err := client.call(ctx, http.MethodGet, "/v1/actor/telegram-config", caller, nil, &response); err != nil {
		return invest.TelegramBotConfig{}, err
	}
	return response.Config, nil
}

// UpdateTelegramConfig stores the bot config. Admin only.
func (client *Client) UpdateTelegramConfig(ctx context.Context, caller string, config invest.TelegramBotConfig) error {
	return client.call(ctx, http.MethodPost, "/v1/actor/telegram-config", caller, config, nil)
}

func (client *Client) walletFigure(ctx context.Context, path string, caller string) (*float64, error) {
	var response struct {
		Balance *float64 `json:"balance"`
	}
	if err := client.call(ctx, http.MethodGet, path, caller, nil, &response); err != nil {
		return nil, err
	}
	return response.Balance, nil
}

func (client *Client) weeklyFigure(ctx context.Context, path string, caller string) (*float64, error) {
	var response struct {
		WeeklyReturn *float64 `json:"weeklyReturn"`
	}
	if err := client.call(ctx, http.MethodGet, path, caller, nil, &response); err != nil {
		return nil, err
	}
	return response.WeeklyReturn, nil
}

func (client *Client) call(ctx context.Context, method string, path string, caller string, body any, out any) error {
	requestCtx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("investclient encode: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	request, err := http.NewRequestWithContext(requestCtx, method, client.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("investclient request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+client.serviceToken)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		request.Header.Set(investapi.HeaderCallerPrincipal, caller)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("investclient call %s: %w", path, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return decodeAPIError(response)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("investclient decode %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(response *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<16))
	if err == nil {
		_ = json.Unmarshal(raw, &envelope)
	}
	return &APIError{
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
		Status:  response.StatusCode,
	}
}
