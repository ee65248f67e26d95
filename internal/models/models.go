package models

import (
	"time"
)

type Account struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Credit       float64 `json:"credit"`
}

type OrderItem struct {
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

type Order struct {
	ID          string      `json:"id"`
	AccountID   string      `json:"-"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// PaymentDetails mirrors the checkout form fields. Card data is validated
// for shape only and never forwarded anywhere.
type PaymentDetails struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

type CreateOrderRequest struct {
	Items       []OrderItem     `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	Payment     *PaymentDetails `json:"payment,omitempty"`
}

type CreateOrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

type BalanceResponse struct {
	Credit float64 `json:"credit"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
