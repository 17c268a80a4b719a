package dto

type RegisterOwnerRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=100"`
	Password       string `json:"password" binding:"required,min=8"`
	RestaurantName string `json:"restaurant_name" binding:"required"`
	Address        string `json:"address"`
	LogoURL        string `json:"logo_url"`
}

type RegisterStaffRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=staff admin"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateTableRequest struct {
	TableNumber int `json:"table_number" binding:"required,gte=1"`
}

type CreateMenuItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Category    string   `json:"category" binding:"required"`
	ImageURL    string   `json:"image_url"`
	IsAvailable *bool    `json:"is_available"`
}

// UpdateMenuItemRequest only touches the fields that are present.
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Category    *string  `json:"category" binding:"omitempty,min=1"`
	ImageURL    *string  `json:"image_url"`
	IsAvailable *bool    `json:"is_available"`
}

type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity" binding:"omitempty,gte=1"`
}

type PlaceOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type GroupPayRequest struct {
	SessionIDs []string `json:"session_ids" binding:"required,min=1"`
}

type CreateGameRequest struct {
	SessionIDs []string `json:"session_ids" binding:"required"`
	MenuItemID string   `json:"menu_item_id" binding:"required"`
}

type FinishGameRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type CoasterUpdateRequest struct {
	TableID string   `json:"table_id" binding:"required"`
	Weight  *float64 `json:"weight" binding:"required,gte=0"`
}

type ServiceCallRequest struct {
	RequestType string `json:"request_type" binding:"required,max=50"`
	Message     string `json:"message"`
}
