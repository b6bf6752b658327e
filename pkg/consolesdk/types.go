package consolesdk

// ============================================================================
// Auth Types
// ============================================================================

// User is the operator returned by the login and current-user endpoints.
type User struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email,omitempty"`
	IsAdmin     bool    `json:"is_admin"`
	IsAgent     bool    `json:"is_agent"`
	Status      int     `json:"status"`
	Balance     float64 `json:"balance"`
	CreatedAt   string  `json:"created_at,omitempty"`
	LastLoginAt string  `json:"last_login_at,omitempty"`
}

// Role returns a short label for the operator's role.
func (u *User) Role() string {
	switch {
	case u.IsAdmin:
		return "admin"
	case u.IsAgent:
		return "agent"
	default:
		return "user"
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginResponse is the data payload of a successful login. Both fields are
// required; a response missing either is a malformed response.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ChangePasswordRequest carries the query parameters of POST /auth/password.
type ChangePasswordRequest struct {
	OldPassword string `validate:"required"`
	NewPassword string `validate:"required,min=6,max=128,nefield=OldPassword"`
}

// ============================================================================
// Paging
// ============================================================================

// Page is the list payload shared by the list endpoints.
type Page[T any] struct {
	List     []T `json:"list"`
	Total    int `json:"total"`
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// PageQuery selects a page of a list endpoint.
type PageQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0,lte=100"`
}

// ============================================================================
// Agent Types
// ============================================================================

// Agent is a reseller account.
type Agent struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Status    int     `json:"status"`
	Remark    string  `json:"remark,omitempty"`
	Balance   float64 `json:"balance"`
	IsAgent   bool    `json:"is_agent"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// AgentStatistics is the usage summary of one agent.
type AgentStatistics struct {
	TotalOrders    int     `json:"total_orders"`
	TotalUsers     int     `json:"total_users"`
	TotalAmount    float64 `json:"total_amount"`
	MonthlyOrders  int     `json:"monthly_orders"`
	MonthlyAmount  float64 `json:"monthly_amount"`
	DynamicTraffic float64 `json:"dynamic_traffic"`
	StaticIPs      int     `json:"static_ips"`
}

// Balance adjustment directions accepted by the backend.
const (
	BalanceAdd      = "add"
	BalanceSubtract = "subtract"
)

// BalanceAdjustment is the body of POST /agent/{id}/balance.
type BalanceAdjustment struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Type   string  `json:"type" validate:"required,oneof=add subtract"`
	Remark string  `json:"remark,omitempty" validate:"max=255"`
}

// AgentStatusUpdate selects the new status for PUT /open/app/agent/{id}/status.
type AgentStatusUpdate struct {
	Status string `validate:"required,oneof=active disabled"`
}

// ============================================================================
// User Types
// ============================================================================

// Customer is an end user created by an agent.
type Customer struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email,omitempty"`
	Status    string  `json:"status"`
	AgentID   *int64  `json:"agent_id,omitempty"`
	Balance   float64 `json:"balance"`
	Remark    string  `json:"remark,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// CustomerFilter narrows GET /user/list.
type CustomerFilter struct {
	PageQuery
	Username string
	Status   string `validate:"omitempty,oneof=active disabled"`
}

// CreateCustomerRequest is the body of POST /open/app/user/create.
type CreateCustomerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Remark   string `json:"remark,omitempty" validate:"max=255"`
	AgentID  *int64 `json:"agent_id,omitempty"`
}

// CustomerStatusUpdate selects the new status for PUT /open/app/user/{id}/status.
type CustomerStatusUpdate struct {
	Status string `validate:"required,oneof=active disabled"`
}

// ============================================================================
// Order Types
// ============================================================================

// DynamicOrder is a dynamic proxy purchase.
type DynamicOrder struct {
	ID        int64   `json:"id"`
	OrderNo   string  `json:"order_no"`
	UserID    int64   `json:"user_id"`
	AgentID   *int64  `json:"agent_id,omitempty"`
	PoolType  string  `json:"pool_type"`
	Traffic   float64 `json:"traffic"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Remark    string  `json:"remark,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// OrderFilter narrows GET /orders/dynamic. Dates use YYYY-MM-DD.
type OrderFilter struct {
	PageQuery
	UserID    int64
	OrderNo   string
	PoolType  string
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// OrderPage is the list payload of GET /orders/dynamic, which names its page
// size field differently from the other list endpoints.
type OrderPage struct {
	List     []DynamicOrder `json:"list"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ============================================================================
// Price Types
// ============================================================================

// ResourcePrices maps product families to per-resource unit prices,
// e.g. {"dynamic": {"pool1": 0.1}, "static": {"residential": 0.3}}.
type ResourcePrices map[string]map[string]float64

// ResourcePriceUpdate maps resource type ids to their new unit price.
type ResourcePriceUpdate map[int64]float64

// AgentPriceUpdate is the body of POST /settings/agent/{id}/prices.
type AgentPriceUpdate struct {
	DynamicProxyPrice *float64 `json:"dynamic_proxy_price,omitempty"`
	StaticProxyPrice  *float64 `json:"static_proxy_price,omitempty"`
}

// PriceSyncResult is returned by the product price import endpoint.
type PriceSyncResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ============================================================================
// Dashboard Types
// ============================================================================

// DashboardInfo is the summary shown on the console's landing page. Its shape
// differs between admin and agent accounts so it is kept untyped.
type DashboardInfo map[string]any
