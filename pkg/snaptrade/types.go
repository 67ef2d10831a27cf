package snaptrade

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// APIStatus reports whether the API is online.
type APIStatus struct {
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
	Online    bool   `json:"online"`
}

// RegisteredUser is returned by RegisterUser. UserSecret is shown once and
// must be stored by the partner.
type RegisteredUser struct {
	UserID     string `json:"userId"`
	UserSecret string `json:"userSecret"`
}

// User returns the credentials for user-scoped calls.
func (u RegisteredUser) User() User {
	return User{ID: u.UserID, Secret: u.UserSecret}
}

// DeletedUser is returned by DeleteUser.
type DeletedUser struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	UserID string `json:"userId"`
}

// LoginOptions customize the connection portal link.
type LoginOptions struct {
	Broker            string `json:"broker,omitempty"`
	ImmediateRedirect bool   `json:"immediateRedirect,omitempty"`
	CustomRedirect    string `json:"customRedirect,omitempty"`
	Reconnect         string `json:"reconnect,omitempty"`
	ConnectionType    string `json:"connectionType,omitempty"`
}

// LoginRedirect holds the connection portal URI.
type LoginRedirect struct {
	RedirectURI string `json:"redirectURI"`
	SessionID   string `json:"sessionId,omitempty"`
}

// EncryptedJWT is the encrypted token payload. Decrypting it requires the
// partner's RSA private key and is left to the caller.
type EncryptedJWT struct {
	SharedKey            string           `json:"sharedKey"`
	EncryptedMessageData EncryptedMessage `json:"encryptedMessageData"`
}

type EncryptedMessage struct {
	EncryptedMessage string `json:"encryptedMessage"`
	Tag              string `json:"tag"`
	Nonce            string `json:"nonce"`
}

// PartnerData describes the partner's own configuration.
type PartnerData struct {
	RedirectURI                  string      `json:"redirect_uri"`
	Name                         string      `json:"name"`
	Slug                         string      `json:"slug"`
	LogoURL                      string      `json:"logo_url"`
	PinRequired                  bool        `json:"pin_required"`
	AllowedBrokerages            []Brokerage `json:"allowed_brokerages"`
	CanAccessTrades              bool        `json:"can_access_trades"`
	CanAccessHoldings            bool        `json:"can_access_holdings"`
	CanAccessAccountHistory      bool        `json:"can_access_account_history"`
	CanAccessReferenceData       bool        `json:"can_access_reference_data"`
	CanAccessPortfolioManagement bool        `json:"can_access_portfolio_management"`
	CanAccessOrders              bool        `json:"can_access_orders"`
}

type Currency struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	IncludeInRateData bool   `json:"include_in_rate_data,omitempty"`
}

type ExchangeRate struct {
	Src          Currency        `json:"src"`
	Dst          Currency        `json:"dst"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

type Exchange struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	MICCode   string `json:"mic_code"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	StartTime string `json:"start_time"`
	CloseTime string `json:"close_time"`
	Suffix    string `json:"suffix,omitempty"`
}

type SecurityType struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IsSupported bool   `json:"is_supported"`
}

// Symbol is a universal symbol shared across brokerages.
type Symbol struct {
	ID          string        `json:"id"`
	Symbol      string        `json:"symbol"`
	RawSymbol   string        `json:"raw_symbol"`
	Description string        `json:"description"`
	Currency    Currency      `json:"currency"`
	Exchange    *Exchange     `json:"exchange,omitempty"`
	Type        *SecurityType `json:"type,omitempty"`
}

// BrokerageSymbol is a brokerage's listing of a universal symbol.
type BrokerageSymbol struct {
	ID          string `json:"id"`
	Symbol      Symbol `json:"symbol"`
	Description string `json:"description"`
	LocalID     string `json:"local_id"`
	IsQuotable  bool   `json:"is_quotable"`
	IsTradable  bool   `json:"is_tradable"`
}

type Brokerage struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	DisplayName           string `json:"display_name"`
	Description           string `json:"description"`
	Slug                  string `json:"slug"`
	URL                   string `json:"url"`
	LogoURL               string `json:"aws_s3_logo_url"`
	Enabled               bool   `json:"enabled"`
	MaintenanceMode       bool   `json:"maintenance_mode"`
	AllowsFractionalUnits *bool  `json:"allows_fractional_units"`
	AllowsTrading         bool   `json:"allows_trading"`
	HasReporting          bool   `json:"has_reporting"`
	IsRealTimeConnection  bool   `json:"is_real_time_connection"`
}

type BrokerageAuthorizationType struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	AuthType  string     `json:"auth_type"`
	Brokerage *Brokerage `json:"brokerage,omitempty"`
}

// Authorization is a user's connection to one brokerage.
type Authorization struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	CreatedDate  string            `json:"created_date"`
	UpdatedDate  string            `json:"updated_date"`
	Disabled     bool              `json:"disabled"`
	DisabledDate *string           `json:"disabled_date"`
	Brokerage    *Brokerage        `json:"brokerage,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// Account is an investment account. BrokerageAuthorization is an ID in most
// payloads and an object in holdings, so it is kept raw.
type Account struct {
	ID                     string          `json:"id"`
	BrokerageAuthorization json.RawMessage `json:"brokerage_authorization,omitempty"`
	PortfolioGroup         string          `json:"portfolio_group,omitempty"`
	Name                   string          `json:"name"`
	Number                 string          `json:"number"`
	InstitutionName        string          `json:"institution_name,omitempty"`
	CreatedDate            string          `json:"created_date,omitempty"`
	Meta                   map[string]any  `json:"meta,omitempty"`
}

type Balance struct {
	Currency    Currency            `json:"currency"`
	Cash        decimal.NullDecimal `json:"cash"`
	BuyingPower decimal.NullDecimal `json:"buying_power"`
}

type Position struct {
	Symbol               BrokerageSymbol     `json:"symbol"`
	Units                decimal.NullDecimal `json:"units"`
	FractionalUnits      decimal.NullDecimal `json:"fractional_units"`
	Price                decimal.NullDecimal `json:"price"`
	OpenPnL              decimal.NullDecimal `json:"open_pnl"`
	AveragePurchasePrice decimal.NullDecimal `json:"average_purchase_price"`
}

// Order is a brokerage order record. Quantities arrive as strings or numbers;
// decimal accepts both.
type Order struct {
	BrokerageOrderID string              `json:"brokerage_order_id"`
	Status           string              `json:"status"`
	Symbol           string              `json:"symbol"`
	UniversalSymbol  *Symbol             `json:"universal_symbol,omitempty"`
	Action           string              `json:"action"`
	TotalQuantity    decimal.NullDecimal `json:"total_quantity"`
	OpenQuantity     decimal.NullDecimal `json:"open_quantity"`
	CanceledQuantity decimal.NullDecimal `json:"canceled_quantity"`
	FilledQuantity   decimal.NullDecimal `json:"filled_quantity"`
	ExecutionPrice   decimal.NullDecimal `json:"execution_price"`
	LimitPrice       decimal.NullDecimal `json:"limit_price"`
	StopPrice        decimal.NullDecimal `json:"stop_price"`
	OrderType        string              `json:"order_type"`
	TimeInForce      string              `json:"time_in_force"`
	TimePlaced       string              `json:"time_placed"`
	TimeUpdated      string              `json:"time_updated"`
	ExpiryDate       *string             `json:"expiry_date"`
}

type TotalValue struct {
	Value    decimal.NullDecimal `json:"value"`
	Currency string              `json:"currency"`
}

// Holdings groups one account's balances, positions and orders.
type Holdings struct {
	Account    Account     `json:"account"`
	Balances   []Balance   `json:"balances"`
	Positions  []Position  `json:"positions"`
	Orders     []Order     `json:"orders"`
	TotalValue *TotalValue `json:"total_value,omitempty"`
}

// OrderFilter narrows AccountOrders. Zero fields are omitted.
type OrderFilter struct {
	Status string
	Days   int
}

// Quote is a live quote for one symbol.
type Quote struct {
	Symbol         Symbol              `json:"symbol"`
	BidPrice       decimal.NullDecimal `json:"bid_price"`
	AskPrice       decimal.NullDecimal `json:"ask_price"`
	LastTradePrice decimal.NullDecimal `json:"last_trade_price"`
	BidSize        decimal.NullDecimal `json:"bid_size"`
	AskSize        decimal.NullDecimal `json:"ask_size"`
}

// OrderRequest describes a trade for OrderImpact and PlaceForceOrder.
type OrderRequest struct {
	AccountID         string
	Action            string
	OrderType         string
	TimeInForce       string
	UniversalSymbolID string
	Units             decimal.NullDecimal
	Price             decimal.NullDecimal
	Stop              decimal.NullDecimal
	NotionalValue     decimal.NullDecimal
}

// MarshalJSON writes decimal fields as JSON numbers, which the API expects.
func (o OrderRequest) MarshalJSON() ([]byte, error) {
	type wire struct {
		AccountID         string       `json:"account_id"`
		Action            string       `json:"action"`
		OrderType         string       `json:"order_type"`
		TimeInForce       string       `json:"time_in_force"`
		UniversalSymbolID string       `json:"universal_symbol_id"`
		Units             *json.Number `json:"units,omitempty"`
		Price             *json.Number `json:"price,omitempty"`
		Stop              *json.Number `json:"stop,omitempty"`
		NotionalValue     *json.Number `json:"notional_value,omitempty"`
	}
	return json.Marshal(wire{
		AccountID:         o.AccountID,
		Action:            o.Action,
		OrderType:         o.OrderType,
		TimeInForce:       o.TimeInForce,
		UniversalSymbolID: o.UniversalSymbolID,
		Units:             number(o.Units),
		Price:             number(o.Price),
		Stop:              number(o.Stop),
		NotionalValue:     number(o.NotionalValue),
	})
}

func number(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := json.Number(d.Decimal.String())
	return &n
}

type ManualTradeSymbol struct {
	BrokerageSymbolID string   `json:"brokerage_symbol_id"`
	UniversalSymbolID string   `json:"universal_symbol_id"`
	Currency          Currency `json:"currency"`
	LocalID           string   `json:"local_id"`
	Description       string   `json:"description"`
	Symbol            string   `json:"symbol"`
}

// Trade is a validated trade awaiting placement.
type Trade struct {
	ID          string              `json:"id"`
	Account     string              `json:"account"`
	OrderType   string              `json:"order_type"`
	TimeInForce string              `json:"time_in_force"`
	Symbol      ManualTradeSymbol   `json:"symbol"`
	Action      string              `json:"action"`
	Units       decimal.NullDecimal `json:"units"`
	Price       decimal.NullDecimal `json:"price"`
}

type TradeImpact struct {
	Account              string              `json:"account"`
	Currency             string              `json:"currency"`
	RemainingCash        decimal.NullDecimal `json:"remaining_cash"`
	EstimatedCommissions decimal.NullDecimal `json:"estimated_commissions"`
	ForexFees            decimal.NullDecimal `json:"forex_fees"`
}

type RemainingBalance struct {
	Account     Account             `json:"account"`
	Currency    Currency            `json:"currency"`
	Cash        decimal.NullDecimal `json:"cash"`
	BuyingPower decimal.NullDecimal `json:"buying_power"`
}

// OrderImpact is the projected effect of a trade.
type OrderImpact struct {
	Trade                    Trade             `json:"trade"`
	TradeImpacts             []TradeImpact     `json:"trade_impacts"`
	CombinedRemainingBalance *RemainingBalance `json:"combined_remaining_balance,omitempty"`
}

type PortfolioGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PortfolioGroupPosition struct {
	Symbol          Symbol              `json:"symbol"`
	Price           decimal.NullDecimal `json:"price"`
	Units           decimal.NullDecimal `json:"units"`
	FractionalUnits decimal.NullDecimal `json:"fractional_units"`
}

// CalculatedTrade is a rebalancing trade set for a portfolio group.
type CalculatedTrade struct {
	ID     string  `json:"id"`
	Trades []Trade `json:"trades"`
}

// ActivityFilter narrows Activities. Dates are YYYY-MM-DD.
type ActivityFilter struct {
	StartDate string
	EndDate   string
	Accounts  []string
}

type ActivityAccount struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Activity is one transaction in an account's history.
type Activity struct {
	ID             string              `json:"id"`
	Account        ActivityAccount     `json:"account"`
	Symbol         *Symbol             `json:"symbol,omitempty"`
	OptionSymbol   *string             `json:"option_symbol"`
	Currency       Currency            `json:"currency"`
	Type           string              `json:"type"`
	Description    string              `json:"description"`
	Amount         decimal.NullDecimal `json:"amount"`
	Price          decimal.NullDecimal `json:"price"`
	Units          decimal.NullDecimal `json:"units"`
	Fee            decimal.NullDecimal `json:"fee"`
	SettlementDate string              `json:"settlement_date"`
	TradeDate      string              `json:"trade_date"`
	Institution    string              `json:"institution"`
	OptionType     string              `json:"option_type"`
}

// PerformanceFilter selects the reporting window. Dates are YYYY-MM-DD.
type PerformanceFilter struct {
	StartDate string
	EndDate   string
	Accounts  []string
	Detailed  bool
	Frequency string
}

type Timeframe struct {
	Date     string              `json:"date"`
	Value    decimal.NullDecimal `json:"value"`
	Currency string              `json:"currency"`
}

type ReturnRate struct {
	PeriodStart  string              `json:"periodStart"`
	PeriodEnd    string              `json:"periodEnd"`
	RateOfReturn decimal.NullDecimal `json:"rateOfReturn"`
}

// Performance summarizes returns, contributions and fees over a window.
// Dividend breakdowns are kept raw.
type Performance struct {
	TotalEquityTimeframe          []Timeframe         `json:"totalEquityTimeframe"`
	ContributionTimeframe         []Timeframe         `json:"contributionTimeframe"`
	WithdrawalTimeframe           []Timeframe         `json:"withdrawalTimeframe"`
	ContributionStreak            int                 `json:"contributionStreak"`
	ContributionMonthsContributed int                 `json:"contributionMonthsContributed"`
	ContributionTotalMonths       int                 `json:"contributionTotalMonths"`
	DividendIncome                decimal.NullDecimal `json:"dividendIncome"`
	MonthlyDividends              decimal.NullDecimal `json:"monthlyDividends"`
	Dividends                     json.RawMessage     `json:"dividends,omitempty"`
	DividendTimeline              json.RawMessage     `json:"dividendTimeline,omitempty"`
	Commissions                   decimal.NullDecimal `json:"commissions"`
	ForexFees                     decimal.NullDecimal `json:"forexFees"`
	Fees                          decimal.NullDecimal `json:"fees"`
	RateOfReturn                  decimal.NullDecimal `json:"rateOfReturn"`
	ReturnRateTimeframe           []ReturnRate        `json:"returnRateTimeframe"`
	DetailedMode                  bool                `json:"detailedMode"`
}
