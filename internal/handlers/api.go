package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/dsmirnov/gophershop/internal/auth"
	"github.com/dsmirnov/gophershop/internal/catalog"
	"github.com/dsmirnov/gophershop/internal/middlewares"
	"github.com/dsmirnov/gophershop/internal/models"
	"github.com/dsmirnov/gophershop/internal/payment"
	"github.com/dsmirnov/gophershop/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// totals are client-computed sums of float prices; allow rounding slack
const totalTolerance = 0.001

type API struct {
	storage   storage.Storage
	log       *logrus.Logger
	jwtSecret string
}

func NewAPI(s storage.Storage, log *logrus.Logger, jwtSecret string) *API {
	return &API{
		storage:   s,
		log:       log,
		jwtSecret: jwtSecret,
	}
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	if req.Username == "" || req.Password == "" {
		a.writeError(w, http.StatusBadRequest, "username and password must not be empty")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.log.Errorf("failed to hash password: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	account, err := a.storage.CreateAccount(r.Context(), req.Username, string(passwordHash))
	if err != nil {
		if errors.Is(err, storage.ErrUsernameExists) {
			a.writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		a.log.Errorf("failed to create account: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	a.respondWithToken(w, account, http.StatusCreated)
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	account, err := a.storage.GetAccountByUsername(r.Context(), req.Username)
	if err != nil {
		a.log.Errorf("failed to get account: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Unknown username and wrong password produce the same response so the
	// endpoint cannot be used to enumerate usernames.
	if account == nil {
		a.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		a.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	a.respondWithToken(w, account, http.StatusOK)
}

func (a *API) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(middlewares.AccountIDKey).(string)

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	if req.Payment != nil {
		if err := payment.ValidateDetails(req.Payment, time.Now()); err != nil {
			a.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	// a negative total would turn the debit into a self-credit
	if req.TotalAmount < 0 {
		a.writeError(w, http.StatusBadRequest, "Order amounts must not be negative")
		return
	}
	for _, item := range req.Items {
		if item.Price < 0 {
			a.writeError(w, http.StatusBadRequest, "Order amounts must not be negative")
			return
		}
	}

	if math.Abs(catalog.Total(req.Items)-req.TotalAmount) > totalTolerance {
		a.writeError(w, http.StatusBadRequest, "Order total does not match item prices")
		return
	}

	order, err := a.storage.CreateOrder(r.Context(), accountID, req.Items, req.TotalAmount)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountNotFound):
			a.writeError(w, http.StatusNotFound, "Account not found")
		case errors.Is(err, storage.ErrInsufficientCredit):
			a.writeError(w, http.StatusBadRequest, "Insufficient credit")
		case errors.Is(err, storage.ErrNegativeAmount):
			a.writeError(w, http.StatusBadRequest, "Order amounts must not be negative")
		default:
			a.log.Errorf("failed to create order: %v", err)
			a.writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	a.writeJSON(w, http.StatusCreated, models.CreateOrderResponse{
		Message: "Order placed successfully",
		Order:   order,
	})
}

func (a *API) GetOrders(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(middlewares.AccountIDKey).(string)

	orders, err := a.storage.GetOrdersByAccount(r.Context(), accountID)
	if err != nil {
		a.log.Errorf("failed to get orders: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	a.writeJSON(w, http.StatusOK, orders)
}

func (a *API) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(middlewares.AccountIDKey).(string)

	account, err := a.storage.GetAccountByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			a.writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		a.log.Errorf("failed to get account: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	a.writeJSON(w, http.StatusOK, models.BalanceResponse{Credit: account.Credit})
}

func (a *API) GetProducts(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, catalog.Products())
}

func (a *API) respondWithToken(w http.ResponseWriter, account *models.Account, status int) {
	token, err := auth.IssueToken(account.ID, a.jwtSecret, auth.TokenLifetime)
	if err != nil {
		a.log.Errorf("failed to issue token: %v", err)
		a.writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	a.writeJSON(w, status, models.AuthResponse{
		ID:       account.ID,
		Username: account.Username,
		Token:    token,
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Errorf("failed to encode response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, models.ErrorResponse{Message: message})
}
