package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/middleware"
	"klikpos/internal/repository"
	"klikpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Service doubles ───────────────────────────────────────────────────────────

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Open(ctx context.Context, a service.Actor, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	args := m.Called(ctx, a, req)
	resp, _ := args.Get(0).(*dto.SessionResponse)
	return resp, args.Error(1)
}

func (m *mockSessions) IsOpen(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessions) Close(ctx context.Context, a service.Actor, id uuid.UUID, scope service.ReconciliationScope, req dto.CloseSessionRequest) (*dto.ReconciliationResponse, error) {
	args := m.Called(ctx, a, id, scope, req)
	resp, _ := args.Get(0).(*dto.ReconciliationResponse)
	return resp, args.Error(1)
}

func (m *mockSessions) GetActive(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.SessionResponse)
	return resp, args.Error(1)
}

func (m *mockSessions) Report(ctx context.Context, a service.Actor, id uuid.UUID) (*dto.ReconciliationResponse, error) {
	args := m.Called(ctx, a, id)
	resp, _ := args.Get(0).(*dto.ReconciliationResponse)
	return resp, args.Error(1)
}

func (m *mockSessions) History(ctx context.Context, page, limit int) ([]dto.SessionResponse, int64, error) {
	args := m.Called(ctx, page, limit)
	resp, _ := args.Get(0).([]dto.SessionResponse)
	return resp, args.Get(1).(int64), args.Error(2)
}

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) ComputeTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.TotalsResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.TotalsResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) Create(ctx context.Context, a service.Actor, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	args := m.Called(ctx, a, req)
	resp, _ := args.Get(0).(*dto.InvoiceResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) Submit(ctx context.Context, a service.Actor, id uuid.UUID) (*dto.InvoiceResponse, error) {
	args := m.Called(ctx, a, id)
	resp, _ := args.Get(0).(*dto.InvoiceResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) CreateReturn(ctx context.Context, a service.Actor, id uuid.UUID, req dto.ReturnInvoiceRequest) (*dto.InvoiceResponse, error) {
	args := m.Called(ctx, a, id, req)
	resp, _ := args.Get(0).(*dto.InvoiceResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) Get(ctx context.Context, a service.Actor, id uuid.UUID) (*dto.InvoiceResponse, error) {
	args := m.Called(ctx, a, id)
	resp, _ := args.Get(0).(*dto.InvoiceResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) List(ctx context.Context, a service.Actor, f repository.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	args := m.Called(ctx, a, f)
	resp, _ := args.Get(0).(*dto.InvoiceListResponse)
	return resp, args.Error(1)
}

func (m *mockInvoices) PDF(ctx context.Context, a service.Actor, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, a, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *mockInvoices) SendWhatsApp(ctx context.Context, a service.Actor, id uuid.UUID, mobile *string) (*dto.NotificationResponse, error) {
	args := m.Called(ctx, a, id, mobile)
	resp, _ := args.Get(0).(*dto.NotificationResponse)
	return resp, args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, token string) (*dto.LoginResponse, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*dto.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.UserResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).([]dto.UserResponse)
	return resp, args.Error(1)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

var (
	cashierID = uuid.MustParse("7b0c2f6e-1d3a-4b8e-9c55-0a1f2e3d4c5b")
	profileID = uuid.MustParse("5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b")
)

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID.String(), "username": "amina", "role": role,
		"pos_profile_id": profileID.String(),
		"exp":            time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func expectedActor(role string) service.Actor {
	pid := profileID
	return service.Actor{UserID: cashierID, Username: "amina", Role: role, POSProfileID: &pid}
}

func newRouter(sessions service.SessionService, invoices service.InvoiceService, auth service.AuthService) *gin.Engine {
	r := gin.New()
	if auth != nil {
		ah := NewAuthHandler(auth)
		r.POST("/v1/auth/login", ah.Login)
		r.POST("/v1/auth/refresh", ah.Refresh)
	}
	v1 := r.Group("/v1", middleware.JWTAuth(testSecret))
	if sessions != nil {
		sh := NewSessionsHandler(sessions)
		v1.POST("/sessions/open", sh.Open)
		v1.GET("/sessions/is-open", sh.IsOpen)
		v1.GET("/sessions/active", sh.Active)
		v1.GET("/sessions/history", sh.History)
		v1.POST("/sessions/:id/close", sh.Close)
		v1.GET("/sessions/:id/report", sh.Report)
	}
	if invoices != nil {
		ih := NewInvoicesHandler(invoices)
		v1.POST("/invoices", ih.Create)
		v1.GET("/invoices", ih.List)
		v1.POST("/invoices/:id/return", ih.Return)
		v1.GET("/invoices/:id/pdf", ih.PDF)
		v1.POST("/invoices/:id/whatsapp", ih.WhatsApp)
	}
	return r
}

func do(r http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// ── Sessions ──────────────────────────────────────────────────────────────────

func TestOpen_Created(t *testing.T) {
	svc := new(mockSessions)
	svc.On("Open", mock.Anything, expectedActor("cashier"), mock.AnythingOfType("dto.OpenSessionRequest")).
		Return(&dto.SessionResponse{ID: uuid.NewString(), Status: "open"}, nil)

	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/open", token(t, cashierID, "cashier"),
		map[string]any{"balance_details": []map[string]any{{"mode_of_payment": "Cash", "opening_amount": "100"}}})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestOpen_AlreadyOpenIs409WithSessionID(t *testing.T) {
	existing := uuid.NewString()
	svc := new(mockSessions)
	svc.On("Open", mock.Anything, mock.Anything, mock.Anything).Return(nil, apierror.AlreadyOpen(existing))

	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/open", token(t, cashierID, "cashier"),
		map[string]any{"balance_details": []map[string]any{{"mode_of_payment": "Cash", "opening_amount": "100"}}})

	require.Equal(t, http.StatusConflict, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "already_open", e.Code)
	assert.Equal(t, existing, e.Details["session_id"])
}

func TestOpen_NegativeOpeningIs422(t *testing.T) {
	svc := new(mockSessions)
	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/open", token(t, cashierID, "cashier"),
		map[string]any{"balance_details": []map[string]any{{"mode_of_payment": "Cash", "opening_amount": "-5"}}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "Open", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpen_WithoutToken(t *testing.T) {
	w := do(newRouter(new(mockSessions), nil, nil), http.MethodPost, "/v1/sessions/open", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIsOpen(t *testing.T) {
	svc := new(mockSessions)
	svc.On("IsOpen", mock.Anything, cashierID).Return(true, nil)

	w := do(newRouter(svc, nil, nil), http.MethodGet, "/v1/sessions/is-open", token(t, cashierID, "cashier"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"is_open":true}`, w.Body.String())
}

func TestHistory_ClampsPaging(t *testing.T) {
	svc := new(mockSessions)
	svc.On("History", mock.Anything, 1, 20).Return([]dto.SessionResponse{{ID: "s-1"}}, int64(41), nil).Once()

	w := do(newRouter(svc, nil, nil), http.MethodGet, "/v1/sessions/history?page=0&limit=500", token(t, cashierID, "admin"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data  []dto.SessionResponse `json:"data"`
		Total int64                 `json:"total"`
		Page  int                   `json:"page"`
		Limit int                   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(41), body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 20, body.Limit)
	require.Len(t, body.Data, 1)
	svc.AssertExpectations(t)
}

func TestClose_DayScopeForbiddenForCashier(t *testing.T) {
	svc := new(mockSessions)
	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/"+uuid.NewString()+"/close", token(t, cashierID, "cashier"),
		map[string]any{"scope": "day", "closing_counts": map[string]string{"Cash": "100"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClose_DayScopeForSupervisor(t *testing.T) {
	id := uuid.New()
	svc := new(mockSessions)
	svc.On("Close", mock.Anything, expectedActor("supervisor"), id, service.ScopeDay, mock.Anything).
		Return(&dto.ReconciliationResponse{SessionID: id.String(), Scope: "day", Status: "closed"}, nil)

	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/"+id.String()+"/close", token(t, cashierID, "supervisor"),
		map[string]any{"scope": "day", "closing_counts": map[string]string{"Cash": "100"}})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestClose_UnknownScopeIs422(t *testing.T) {
	w := do(newRouter(new(mockSessions), nil, nil), http.MethodPost, "/v1/sessions/"+uuid.NewString()+"/close", token(t, cashierID, "cashier"),
		map[string]any{"scope": "week", "closing_counts": map[string]string{"Cash": "100"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClose_NotFound(t *testing.T) {
	svc := new(mockSessions)
	svc.On("Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apierror.NotFound("no open session with this id"))

	w := do(newRouter(svc, nil, nil), http.MethodPost, "/v1/sessions/"+uuid.NewString()+"/close", token(t, cashierID, "cashier"),
		map[string]any{"closing_counts": map[string]string{"Cash": "100"}})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}

func TestReport_BadID(t *testing.T) {
	w := do(newRouter(new(mockSessions), nil, nil), http.MethodGet, "/v1/sessions/not-a-uuid/report", token(t, cashierID, "cashier"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActive_InternalErrorIsGeneric(t *testing.T) {
	svc := new(mockSessions)
	svc.On("GetActive", mock.Anything, cashierID).Return(nil, apierror.Internal("load session", assert.AnError))

	w := do(newRouter(svc, nil, nil), http.MethodGet, "/v1/sessions/active", token(t, cashierID, "cashier"), nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

// ── Invoices ──────────────────────────────────────────────────────────────────

func TestCreateInvoice_ConflictWhenSessionClosed(t *testing.T) {
	svc := new(mockInvoices)
	svc.On("Create", mock.Anything, expectedActor("cashier"), mock.Anything).
		Return(nil, apierror.Conflict("session closed"))

	w := do(newRouter(nil, svc, nil), http.MethodPost, "/v1/invoices", token(t, cashierID, "cashier"),
		map[string]any{"items": []map[string]any{{"item_code": "SUGAR-1KG", "qty": "1", "rate": "100"}}})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateInvoice_ZeroQtyIs422(t *testing.T) {
	svc := new(mockInvoices)
	w := do(newRouter(nil, svc, nil), http.MethodPost, "/v1/invoices", token(t, cashierID, "cashier"),
		map[string]any{"items": []map[string]any{{"item_code": "SUGAR-1KG", "qty": "0", "rate": "100"}}})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Qty")
}

func TestReturn_EmptyBodyAllowed(t *testing.T) {
	id := uuid.New()
	svc := new(mockInvoices)
	svc.On("CreateReturn", mock.Anything, mock.Anything, id, dto.ReturnInvoiceRequest{}).
		Return(&dto.InvoiceResponse{ID: uuid.NewString(), IsReturn: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/"+id.String()+"/return", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cashierID, "cashier"))
	w := httptest.NewRecorder()
	newRouter(nil, svc, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestList_PassesFilter(t *testing.T) {
	sessionID := uuid.New()
	svc := new(mockInvoices)
	svc.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f repository.InvoiceFilter) bool {
		return f.SessionID != nil && *f.SessionID == sessionID && f.Status == "submitted" && f.Page == 2
	})).Return(&dto.InvoiceListResponse{Page: 2, Limit: 20}, nil)

	w := do(newRouter(nil, svc, nil), http.MethodGet, "/v1/invoices?session_id="+sessionID.String()+"&status=submitted&page=2", token(t, cashierID, "cashier"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestList_BadSessionID(t *testing.T) {
	w := do(newRouter(nil, new(mockInvoices), nil), http.MethodGet, "/v1/invoices?session_id=x", token(t, cashierID, "cashier"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPDF_ServesAttachment(t *testing.T) {
	id := uuid.New()
	svc := new(mockInvoices)
	svc.On("PDF", mock.Anything, mock.Anything, id).Return([]byte("%PDF-1.3"), "SINV-20261016-ABCD1234.pdf", nil)

	w := do(newRouter(nil, svc, nil), http.MethodGet, "/v1/invoices/"+id.String()+"/pdf", token(t, cashierID, "cashier"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "SINV-20261016-ABCD1234.pdf")
}

func TestWhatsApp_Accepted(t *testing.T) {
	id := uuid.New()
	mobile := "0712345678"
	svc := new(mockInvoices)
	svc.On("SendWhatsApp", mock.Anything, mock.Anything, id, &mobile).
		Return(&dto.NotificationResponse{Status: "pending"}, nil)

	w := do(newRouter(nil, svc, nil), http.MethodPost, "/v1/invoices/"+id.String()+"/whatsapp", token(t, cashierID, "cashier"),
		map[string]any{"mobile_no": mobile})
	assert.Equal(t, http.StatusAccepted, w.Code)
	svc.AssertExpectations(t)
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestLogin_InvalidCredentialsIs401(t *testing.T) {
	svc := new(mockAuth)
	svc.On("Login", mock.Anything, dto.LoginRequest{Username: "amina", Password: "wrong-pass"}).
		Return(nil, service.ErrInvalidCredentials)

	w := do(newRouter(nil, nil, svc), http.MethodPost, "/v1/auth/login", "",
		map[string]string{"username": "amina", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_MissingTokenIs422(t *testing.T) {
	w := do(newRouter(nil, nil, new(mockAuth)), http.MethodPost, "/v1/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	r := newRouter(new(mockSessions), nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/open", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token(t, cashierID, "cashier"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
