package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"provenance-ledger/internal/core/domain"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/internal/core/ports/mocks"
	"provenance-ledger/internal/ledger"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testTime  = time.Date(2024, 6, 1, 12, 0, 0, 123_000_000, time.UTC)
	testAlice = domain.Party{Name: "Alice", Email: "alice@example.com"}
	testBob   = domain.Party{Name: "Bob", Email: "bob@example.com"}
)

type fixture struct {
	itemSvc  *mocks.MockItemService
	tokenSvc *mocks.MockTokenService
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		itemSvc:  mocks.NewMockItemService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
	}
	f.router = SetupRouter(RouterDeps{
		ItemSvc:  f.itemSvc,
		TokenSvc: f.tokenSvc,
		Logger:   zerolog.Nop(),
	})
	return f
}

// operator makes the next bearer token resolve to operator-7.
func (f *fixture) operator() {
	f.tokenSvc.EXPECT().Validate("op-token").Return(&ports.OperatorClaims{OperatorID: "operator-7"}, nil)
}

func (f *fixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer op-token")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "missing data envelope: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleResult(kind domain.Payload, owner domain.Party) *ports.ItemResult {
	item := &domain.Item{
		ID:              uuid.New(),
		ProductLineID:   uuid.New(),
		MintNumber:      1,
		SerialNumber:    "WATCH-000001",
		NFCSerialNumber: "04:A2:B3:C4:D5:E6:F7",
		Owner:           owner,
		KeyVersion:      "a1b2c3",
		CreatedAt:       testTime,
		UpdatedAt:       testTime,
	}
	return &ports.ItemResult{
		Item: item,
		Transaction: &domain.Transaction{
			ID:          uuid.New(),
			ItemID:      item.ID,
			BlockNumber: 1,
			Payload:     kind,
			Timestamp:   testTime,
			Nonce:       strings.Repeat("ab", 32),
			Hash:        strings.Repeat("cd", 32),
		},
		Block: &domain.BlockRecord{
			Number:       1,
			PreviousHash: ledger.ZeroHash,
			MerkleRoot:   strings.Repeat("cd", 32),
			Timestamp:    testTime,
			Hash:         strings.Repeat("ef", 32),
		},
	}
}

func sampleHistory(res *ports.ItemResult) *ports.ItemHistory {
	return &ports.ItemHistory{
		Item:    res.Item,
		Entries: []domain.LedgerEntry{{Transaction: res.Transaction, Block: res.Block}},
		Result:  ledger.Valid(),
	}
}

// --- Product lines ---

func TestCreateProductLine_Success(t *testing.T) {
	f := newFixture(t)
	f.operator()
	lineID := uuid.New()
	f.itemSvc.EXPECT().CreateProductLine(gomock.Any(), "watch", "Wrist watch").Return(&domain.ProductLine{
		ID:        lineID,
		Code:      "WATCH",
		Name:      "Wrist watch",
		CreatedAt: testTime,
	}, nil)

	w := f.do(http.MethodPost, "/api/v1/product-lines", `{"code":"watch","name":" Wrist watch "}`, true)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, lineID.String(), data["id"])
	assert.Equal(t, "WATCH", data["code"])
}

func TestCreateProductLine_ValidationError(t *testing.T) {
	f := newFixture(t)
	f.operator()

	w := f.do(http.MethodPost, "/api/v1/product-lines", `{"code":"bad code!","name":"x"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ITEM_002", decodeError(t, w).ErrorCode)
}

// --- Items ---

func TestCreateItem_Success(t *testing.T) {
	f := newFixture(t)
	f.operator()

	res := sampleResult(domain.CreatePayload{To: testAlice}, testAlice)
	res.TagURL = "http://localhost:8080/api/v1/tags/scan?key=abc&version=a1b2c3"
	f.itemSvc.EXPECT().CreateItem(gomock.Any(), ports.CreateItemRequest{
		ProductLineCode: "watch",
		NFCSerialNumber: "04:A2:B3:C4:D5:E6:F7",
		Owner:           testAlice,
		RequestNonce:    "c0ffee-0001-2024-06-01",
		Actor:           "operator-7",
		ClientIP:        "192.0.2.1",
	}).Return(res, nil)

	body := `{"product_line_code":" watch ","nfc_serial_number":"04:A2:B3:C4:D5:E6:F7","owner":{"name":" Alice","email":"alice@example.com"},"request_nonce":"c0ffee-0001-2024-06-01"}`
	w := f.do(http.MethodPost, "/api/v1/items", body, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, res.TagURL, data["tag_url"])

	item := data["item"].(map[string]any)
	assert.Equal(t, "WATCH-000001", item["serial_number"])
	assert.Equal(t, "2024-06-01T12:00:00.123Z", item["created_at"])

	tx := data["transaction"].(map[string]any)
	assert.Equal(t, "CREATE", tx["type"])
	assert.Equal(t, map[string]any{"to": map[string]any{"name": "Alice", "email": "alice@example.com"}}, tx["data"])

	block := data["block"].(map[string]any)
	assert.Equal(t, ledger.ZeroHash, block["previous_hash"])
}

func TestCreateItem_RequiresToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/items", `{}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_002", decodeError(t, w).ErrorCode)
}

func TestCreateItem_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"bad email", `{"product_line_code":"WATCH","nfc_serial_number":"04:A2:B3:C4","owner":{"name":"A","email":"not-an-email"}}`},
		{"bad nfc serial", `{"product_line_code":"WATCH","nfc_serial_number":"hello","owner":{"name":"A","email":"a@example.com"}}`},
		{"missing owner", `{"product_line_code":"WATCH","nfc_serial_number":"04:A2:B3:C4"}`},
		{"short request nonce", `{"product_line_code":"WATCH","nfc_serial_number":"04:A2:B3:C4","owner":{"name":"A","email":"a@example.com"},"request_nonce":"abc"}`},
		{"request nonce with spaces", `{"product_line_code":"WATCH","nfc_serial_number":"04:A2:B3:C4","owner":{"name":"A","email":"a@example.com"},"request_nonce":"not a valid nonce value"}`},
		{"malformed json", `{"product_line_code":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.operator()

			w := f.do(http.MethodPost, "/api/v1/items", tt.body, true)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "ITEM_002", decodeError(t, w).ErrorCode)
		})
	}
}

func TestCreateItem_ServiceError(t *testing.T) {
	f := newFixture(t)
	f.operator()
	f.itemSvc.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDuplicateItem())

	body := `{"product_line_code":"WATCH","nfc_serial_number":"04:A2:B3:C4","owner":{"name":"A","email":"a@example.com"}}`
	w := f.do(http.MethodPost, "/api/v1/items", body, true)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ITEM_003", decodeError(t, w).ErrorCode)
}

func TestTransfer_Success(t *testing.T) {
	f := newFixture(t)
	f.operator()

	res := sampleResult(domain.TransferPayload{From: testAlice, To: testBob}, testBob)
	f.itemSvc.EXPECT().TransferItem(gomock.Any(), ports.TransferItemRequest{
		ItemID:   res.Item.ID,
		NewOwner: testBob,
		Actor:    "operator-7",
		ClientIP: "192.0.2.1",
	}).Return(res, nil)

	w := f.do(http.MethodPost, "/api/v1/items/"+res.Item.ID.String()+"/transfers",
		`{"new_owner":{"name":"Bob","email":"bob@example.com"}}`, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	tx := data["transaction"].(map[string]any)
	assert.Equal(t, "TRANSFER", tx["type"])
	_, hasTag := data["tag_url"]
	assert.False(t, hasTag)
}

func TestTransfer_ReplayedNonce(t *testing.T) {
	f := newFixture(t)
	f.operator()
	itemID := uuid.New()
	f.itemSvc.EXPECT().TransferItem(gomock.Any(), ports.TransferItemRequest{
		ItemID:       itemID,
		NewOwner:     testBob,
		RequestNonce: "transfer-nonce-0042",
		Actor:        "operator-7",
		ClientIP:     "192.0.2.1",
	}).Return(nil, apperror.ErrDuplicateSubmission())

	w := f.do(http.MethodPost, "/api/v1/items/"+itemID.String()+"/transfers",
		`{"new_owner":{"name":"Bob","email":"bob@example.com"},"request_nonce":"transfer-nonce-0042"}`, true)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ITEM_006", decodeError(t, w).ErrorCode)
}

func TestTransfer_InvalidItemID(t *testing.T) {
	f := newFixture(t)
	f.operator()

	w := f.do(http.MethodPost, "/api/v1/items/not-a-uuid/transfers", `{"new_owner":{"name":"Bob","email":"bob@example.com"}}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ITEM_002", decodeError(t, w).ErrorCode)
}

func TestTransfer_TamperDetected(t *testing.T) {
	f := newFixture(t)
	f.operator()
	f.itemSvc.EXPECT().TransferItem(gomock.Any(), gomock.Any()).Return(nil,
		apperror.ErrTamperDetected("merkle mismatch at block 2").WithDetails(map[string]int64{"block_number": 2}))

	w := f.do(http.MethodPost, "/api/v1/items/"+uuid.NewString()+"/transfers", `{"new_owner":{"name":"Bob","email":"bob@example.com"}}`, true)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "LEDGER_001", resp.ErrorCode)
	assert.Contains(t, resp.Message, "merkle mismatch at block 2")
	assert.Equal(t, map[string]any{"block_number": float64(2)}, resp.Details)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		result ledger.Result
		valid  bool
		reason string
	}{
		{"valid chain", ledger.Valid(), true, ""},
		{"broken link", ledger.Invalid("broken chain link at block 3", 3), false, "broken chain link at block 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.operator()
			itemID := uuid.New()
			f.itemSvc.EXPECT().VerifyItem(gomock.Any(), itemID).Return(tt.result, nil)

			w := f.do(http.MethodGet, "/api/v1/items/"+itemID.String()+"/verify", "", true)

			assert.Equal(t, http.StatusOK, w.Code)
			data := decodeData(t, w)
			assert.Equal(t, itemID.String(), data["item_id"])
			assert.Equal(t, tt.valid, data["is_valid"])
			if tt.reason != "" {
				assert.Equal(t, tt.reason, data["error"])
				assert.Equal(t, float64(3), data["block_number"])
			} else {
				assert.NotContains(t, data, "error")
			}
		})
	}
}

func TestVerify_UnknownItem(t *testing.T) {
	f := newFixture(t)
	f.operator()
	f.itemSvc.EXPECT().VerifyItem(gomock.Any(), gomock.Any()).Return(ledger.Result{}, apperror.ErrNotFound("item"))

	w := f.do(http.MethodGet, "/api/v1/items/"+uuid.NewString()+"/verify", "", true)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITEM_001", decodeError(t, w).ErrorCode)
}

func TestHistory_Success(t *testing.T) {
	f := newFixture(t)
	f.operator()
	res := sampleResult(domain.CreatePayload{To: testAlice}, testAlice)
	f.itemSvc.EXPECT().ItemHistory(gomock.Any(), res.Item.ID).Return(sampleHistory(res), nil)

	w := f.do(http.MethodGet, "/api/v1/items/"+res.Item.ID.String()+"/history", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["verification"].(map[string]any)["is_valid"])
	history := data["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, float64(1), entry["block"].(map[string]any)["block_number"])
}

// --- Tags ---

func TestScan_Success(t *testing.T) {
	f := newFixture(t)
	res := sampleResult(domain.CreatePayload{To: testAlice}, testAlice)
	f.itemSvc.EXPECT().ScanTag(gomock.Any(), ports.ScanTagRequest{
		Token:    "tok_abc-123",
		Version:  "a1b2c3",
		ClientIP: "192.0.2.1",
	}).Return(sampleHistory(res), nil)

	w := f.do(http.MethodGet, "/api/v1/tags/scan?key=tok_abc-123&version=a1b2c3", "", false)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "WATCH-000001", data["item"].(map[string]any)["serial_number"])
}

func TestScan_MalformedLinkIsGeneric(t *testing.T) {
	for _, query := range []string{"", "?key=abc", "?version=a1b2c3", "?key=abc&version=a1b2", "?key=abc&version=zzzzzz"} {
		f := newFixture(t)

		w := f.do(http.MethodGet, "/api/v1/tags/scan"+query, "", false)

		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		resp := decodeError(t, w)
		assert.Equal(t, "TAG_001", resp.ErrorCode, query)
		assert.Equal(t, "Invalid or tampered tag", resp.Message, query)
	}
}

func TestScan_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want string
	}{
		{"tampered", apperror.ErrInvalidTag(), http.StatusBadRequest, "TAG_001"},
		{"expired key", apperror.ErrKeyExpired(), http.StatusGone, "KEY_002"},
		{"tamper detected", apperror.ErrTamperDetected("hash mismatch at block 4"), http.StatusConflict, "LEDGER_001"},
		{"storage", apperror.ErrDatabaseError(errors.New("conn reset")), http.StatusInternalServerError, "SYS_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.itemSvc.EXPECT().ScanTag(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := f.do(http.MethodGet, "/api/v1/tags/scan?key=abc&version=a1b2c3", "", false)

			assert.Equal(t, tt.code, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.want, resp.ErrorCode)
			assert.NotContains(t, w.Body.String(), "conn reset")
		})
	}
}

// --- Health & docs ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Status       string                       `json:"status"`
		Dependencies map[string]map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["postgresql"]["status"])
	assert.Equal(t, "connection refused", resp.Dependencies["redis"]["error"])
}

func TestSwaggerUI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

func TestSwaggerSpec(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/swagger/spec", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Provenance Ledger API")
	assert.Contains(t, w.Body.String(), "/tags/scan")
}
