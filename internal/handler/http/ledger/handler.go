package ledger_http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ProttoyDip/Bank-Management-System/internal/app/ledger"
	"github.com/ProttoyDip/Bank-Management-System/internal/domain"
)

type LedgerHandler struct {
	service ledger.LedgerService
	logger  *zap.Logger
	debug   bool
}

// NewLedgerHandler builds the HTTP boundary over the ledger service. With
// debug set, 500 responses carry the underlying error message.
func NewLedgerHandler(s ledger.LedgerService, l *zap.Logger, debug bool) *LedgerHandler {
	return &LedgerHandler{service: s, logger: l, debug: debug}
}

func (h *LedgerHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateUser", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNameEmailRequired):
			writeError(w, http.StatusBadRequest, "Name and email are required")
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "A user with this email already exists")
		default:
			h.internalError(w, "Error creating user", err)
		}
		return
	}

	writeData(w, http.StatusCreated, "User created successfully", mapUserToResponse(user))
}

func (h *LedgerHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, "Error fetching users", err)
		return
	}
	writeData(w, http.StatusOK, "", mapUsersToResponse(users))
}

func (h *LedgerHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid user ID format")
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, "Error fetching user", err)
		return
	}
	writeData(w, http.StatusOK, "", mapUserToResponse(user))
}

func (h *LedgerHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid user ID format")
	if !ok {
		return
	}

	var req ledger.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for UpdateUser", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "A user with this email already exists")
		default:
			h.internalError(w, "Error updating user", err)
		}
		return
	}
	writeData(w, http.StatusOK, "User updated successfully", mapUserToResponse(user))
}

func (h *LedgerHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid user ID format")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, "Error deleting user", err)
		return
	}
	writeData(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateAccount", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUserIDRequired):
			writeError(w, http.StatusBadRequest, "userId is required")
		case errors.Is(err, ledger.ErrInvalidAccountType):
			writeError(w, http.StatusBadRequest, invalidAccountTypeMessage())
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrAccountNumberTaken):
			writeError(w, http.StatusConflict, "Account number collision, please retry")
		default:
			h.internalError(w, "Error creating account", err)
		}
		return
	}
	writeData(w, http.StatusCreated, "Account created successfully", mapAccountToResponse(account))
}

func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.internalError(w, "Error fetching accounts", err)
		return
	}
	writeData(w, http.StatusOK, "", mapAccountsToResponse(accounts))
}

func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid account ID format")
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.internalError(w, "Error fetching account", err)
		return
	}
	writeData(w, http.StatusOK, "", mapAccountToResponse(account))
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid account ID format")
	if !ok {
		return
	}

	var req DepositWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Deposit", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "A positive amount is required")
		return
	}

	account, err := h.service.Deposit(r.Context(), id, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNonPositiveAmount):
			writeError(w, http.StatusBadRequest, "A positive amount is required")
		case errors.Is(err, domain.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		default:
			h.internalError(w, "Error depositing", err)
		}
		return
	}

	message := fmt.Sprintf("Successfully deposited %s", req.Amount.String())
	writeData(w, http.StatusOK, message, mapAccountToResponse(account))
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "Invalid account ID format")
	if !ok {
		return
	}

	var req DepositWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Withdraw", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "A positive amount is required")
		return
	}

	account, err := h.service.Withdraw(r.Context(), id, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNonPositiveAmount):
			writeError(w, http.StatusBadRequest, "A positive amount is required")
		case errors.Is(err, domain.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, "Insufficient balance")
		case errors.Is(err, domain.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		default:
			h.internalError(w, "Error withdrawing", err)
		}
		return
	}

	message := fmt.Sprintf("Successfully withdrew %s", req.Amount.String())
	writeData(w, http.StatusOK, message, mapAccountToResponse(account))
}

func (h *LedgerHandler) pathID(w http.ResponseWriter, r *http.Request, badFormatMessage string) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Warn("Invalid ID in request path", zap.String("id", idStr))
		writeError(w, http.StatusBadRequest, badFormatMessage)
		return 0, false
	}
	return id, true
}

func (h *LedgerHandler) internalError(w http.ResponseWriter, logMessage string, err error) {
	h.logger.Error(logMessage, zap.Error(err))
	resp := errorResponse{Error: "Internal server error"}
	if h.debug {
		resp.Message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func invalidAccountTypeMessage() string {
	types := domain.AccountTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return fmt.Sprintf("Invalid account type. Must be one of: %s", strings.Join(names, ", "))
}
