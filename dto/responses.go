package dto

import "time"

type RestaurantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	LogoURL   string    `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id"`
}

type RegisterOwnerResponse struct {
	Restaurant RestaurantResponse `json:"restaurant"`
	User       UserResponse       `json:"user"`
}

type LoginResponse struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	RestaurantID string    `json:"restaurant_id"`
}

type TableResponse struct {
	ID           string `json:"id"`
	TableNumber  int    `json:"table_number"`
	RestaurantID string `json:"restaurant_id"`
	QRCode       string `json:"qr_code"`
}

type MenuItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

type MenuCategory struct {
	Category string             `json:"category"`
	Items    []MenuItemResponse `json:"items"`
}

type SessionResponse struct {
	ID           string     `json:"session_id"`
	TableID      string     `json:"table_id"`
	TableNumber  int        `json:"table_number"`
	RestaurantID string     `json:"restaurant_id"`
	IsActive     bool       `json:"is_active"`
	GroupID      *string    `json:"group_id"`
	DrinkReady   bool       `json:"drink_ready"`
	CreatedAt    time.Time  `json:"created_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

type DrinkReadyResponse struct {
	SessionID   string    `json:"session_id"`
	TableNumber int       `json:"table_number"`
	DrinkReady  bool      `json:"drink_ready"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderItemResponse struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Subtotal   float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID          string              `json:"order_id"`
	SessionID   string              `json:"session_id"`
	TableNumber int                 `json:"table_number,omitempty"`
	Status      string              `json:"status"`
	Total       float64             `json:"total"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

type Bill struct {
	SessionID   string  `json:"session_id"`
	Total       float64 `json:"total"`
	AlreadyPaid float64 `json:"already_paid"`
	Remaining   float64 `json:"remaining"`
}

type PaymentResponse struct {
	PaymentID   string  `json:"payment_id,omitempty"`
	SessionID   string  `json:"session_id"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Status      string  `json:"status,omitempty"`
	// AlreadyPaid is set when nothing was left to pay and no payment was created.
	AlreadyPaid bool `json:"already_paid,omitempty"`
}

type GroupPaymentResponse struct {
	Total       float64           `json:"total"`
	PaymentType string            `json:"payment_type"`
	Status      string            `json:"status"`
	Sessions    []PaymentResponse `json:"sessions"`
	AlreadyPaid bool              `json:"already_paid,omitempty"`
}

type PaymentRequestResponse struct {
	PaymentID   string    `json:"payment_id"`
	SessionID   string    `json:"session_id"`
	TableNumber int       `json:"table_number"`
	OpenAmount  float64   `json:"open_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type GroupResponse struct {
	GroupID    string        `json:"group_id"`
	InviteCode string        `json:"invite_code"`
	Status     string        `json:"status"`
	Members    []GroupMember `json:"members,omitempty"`
}

type GroupMember struct {
	SessionID   string `json:"session_id"`
	TableNumber int    `json:"table_number"`
}

type InvitationResponse struct {
	InvitationID string    `json:"invitation_id"`
	FromSession  string    `json:"from_session_id"`
	FromTable    int       `json:"from_table"`
	ToSession    string    `json:"to_session_id"`
	GroupID      string    `json:"group_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type GamePlayerResponse struct {
	SessionID  string     `json:"session_id"`
	Finished   bool       `json:"finished"`
	FinishedAt *time.Time `json:"finished_at"`
}

type GameResponse struct {
	GameID         string               `json:"game_id"`
	GameType       string               `json:"game_type"`
	MenuItemID     string               `json:"menu_item_id"`
	Drink          string               `json:"drink,omitempty"`
	Status         string               `json:"status"`
	LoserSessionID *string              `json:"loser_session_id"`
	FinishedAt     *time.Time           `json:"finished_at,omitempty"`
	Players        []GamePlayerResponse `json:"players"`
}

// FinishResult is either "waiting, N remaining" or "finished, loser owes extra cost".
type FinishResult struct {
	GameStatus       string  `json:"game_status"`
	RemainingPlayers int     `json:"remaining_players"`
	LoserSessionID   string  `json:"loser_session_id,omitempty"`
	ExtraCost        float64 `json:"extra_cost"`
}

type CoasterResponse struct {
	TableID     string     `json:"table_id"`
	TableNumber int        `json:"table_number,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Status      string     `json:"status"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

type ServiceCallResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	TableNumber int       `json:"table_number,omitempty"`
	RequestType string    `json:"request_type"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardSession struct {
	SessionID  string  `json:"session_id"`
	OpenOrders int     `json:"open_orders"`
	Total      float64 `json:"total"`
	Paid       float64 `json:"paid"`
	Remaining  float64 `json:"remaining"`
	DrinkReady bool    `json:"drink_ready"`
	InGroup    bool    `json:"in_group"`
}

type DashboardTable struct {
	TableID             string             `json:"table_id"`
	TableNumber         int                `json:"table_number"`
	ActiveSessions      []DashboardSession `json:"active_sessions"`
	OpenServiceRequests int                `json:"open_service_requests"`
}
