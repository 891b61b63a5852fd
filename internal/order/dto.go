package order

// CreateOrderItem is one requested line item.
type CreateOrderItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity" example:"2"`
}

// CreateOrderRequest is the order creation payload.
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items"`
}

// ChangeStatusRequest is the status change payload.
type ChangeStatusRequest struct {
	Status Status `json:"status" example:"PAID"`
}

// ListQuery selects a page of orders. Page is 1-based.
type ListQuery struct {
	Status Status
	Page   int
	Limit  int
}

type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"lastPage"`
}

type Page struct {
	Data []Order  `json:"data"`
	Meta PageMeta `json:"meta"`
}
