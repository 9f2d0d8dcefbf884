package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MyDadsSoft/recoverys/internal/application/intake"
	"github.com/MyDadsSoft/recoverys/internal/application/notify"
	"github.com/MyDadsSoft/recoverys/internal/application/reply"
	"github.com/MyDadsSoft/recoverys/internal/domain/catalog"
	"github.com/MyDadsSoft/recoverys/internal/domain/transport"
	"github.com/MyDadsSoft/recoverys/internal/infrastructure/persistence/jsonledger"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGateway backs the handlers with a controllable transport
type fakeGateway struct {
	mu    sync.Mutex
	ready bool
	users map[string]transport.User
	dmErr error
	dms   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{ready: true, users: make(map[string]transport.User)}
}

func (g *fakeGateway) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

func (g *fakeGateway) SendDirect(_ context.Context, userID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dmErr != nil {
		return g.dmErr
	}
	g.dms++
	return nil
}

func (g *fakeGateway) SendToChannel(context.Context, string, transport.OrderEmbed) error {
	return nil
}
func (g *fakeGateway) SendText(context.Context, string, string) error { return nil }

func (g *fakeGateway) User(_ context.Context, id string) (*transport.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if u, ok := g.users[id]; ok {
		return &u, nil
	}
	return nil, fmt.Errorf("unknown user %s", id)
}

func (g *fakeGateway) UserByHandle(_ context.Context, handle string) (*transport.User, error) {
	return nil, fmt.Errorf("unknown handle %s", handle)
}

func (g *fakeGateway) Events() <-chan transport.Event { return nil }

type testApp struct {
	engine *gin.Engine
	gw     *fakeGateway
	store  *jsonledger.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := jsonledger.NewStore(filepath.Join(t.TempDir(), "orders.json"), zap.NewNop())
	require.NoError(t, store.Load())

	gw := newFakeGateway()
	notifier := notify.NewNotifier(gw, "staff", zap.NewNop())
	intakeService := intake.NewService(store, catalog.Default(), notifier, zap.NewNop())
	coordinator := reply.NewCoordinator(store, gw, notifier, "staff", nil, zap.NewNop())

	orderHandler := NewOrderHandler(intakeService)
	replyHandler := NewReplyHandler(coordinator)
	healthHandler := NewHealthHandler(gw)

	engine := gin.New()
	engine.POST("/api/v1/orders", orderHandler.Submit)
	engine.GET("/api/v1/orders", orderHandler.List)
	engine.POST("/api/v1/replies", replyHandler.Send)
	engine.GET("/healthz", healthHandler.Check)

	return &testApp{engine: engine, gw: gw, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func orderBody() map[string]string {
	return map[string]string{
		"name":            "Alice",
		"email":           "alice@example.com",
		"discordRef":      "100",
		"packageSelected": "RP Boost",
		"currency":        "USD",
	}
}

func TestOrderSubmit(t *testing.T) {
	t.Run("accepts a valid order", func(t *testing.T) {
		app := newTestApp(t)

		w := app.do(t, http.MethodPost, "/api/v1/orders", orderBody())
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.OrderSubmitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Order received", resp.Message)
		assert.Equal(t, "10.00", resp.Price)
		assert.Equal(t, "USD", resp.Currency)
	})

	t.Run("missing field answers 400 validation", func(t *testing.T) {
		app := newTestApp(t)

		body := orderBody()
		delete(body, "email")
		w := app.do(t, http.MethodPost, "/api/v1/orders", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Missing required fields", resp.Error.Message)
	})

	t.Run("malformed JSON answers 400", func(t *testing.T) {
		app := newTestApp(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderList(t *testing.T) {
	t.Run("returns the ledger as a bare array in creation order", func(t *testing.T) {
		app := newTestApp(t)
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/orders", orderBody()).Code)
		second := orderBody()
		second["name"] = "Bob"
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/orders", second).Code)

		w := app.do(t, http.MethodGet, "/api/v1/orders", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var orders []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
		require.Len(t, orders, 2)
		assert.Equal(t, "Alice", orders[0]["name"])
		assert.Equal(t, "Bob", orders[1]["name"])
		assert.Equal(t, false, orders[0]["replied"])
	})

	t.Run("empty ledger returns an empty array", func(t *testing.T) {
		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/api/v1/orders", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestReplySend(t *testing.T) {
	submitOrder := func(t *testing.T, app *testApp) {
		t.Helper()
		app.gw.users["100"] = transport.User{ID: "100", Username: "alice"}
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/v1/orders", orderBody()).Code)
	}

	t.Run("delivers and answers 200", func(t *testing.T) {
		app := newTestApp(t)
		submitOrder(t, app)

		w := app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{
			"orderId": 1,
			"message": "your account is restored",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ReplyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Reply delivered", resp.Message)

		o, err := app.store.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, o.Replied)
	})

	t.Run("missing fields answer 400", func(t *testing.T) {
		app := newTestApp(t)
		w := app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{"orderId": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{"message": "hi"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown order answers 404", func(t *testing.T) {
		app := newTestApp(t)
		w := app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{
			"orderId": 42,
			"message": "hello",
		})
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("gateway down answers 503", func(t *testing.T) {
		app := newTestApp(t)
		submitOrder(t, app)
		app.gw.mu.Lock()
		app.gw.ready = false
		app.gw.mu.Unlock()

		w := app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{
			"orderId": 1,
			"message": "hello",
		})
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTransportUnavailable, resp.Error.Code)
	})

	t.Run("rejected DM answers 500 delivery failed", func(t *testing.T) {
		app := newTestApp(t)
		submitOrder(t, app)
		app.gw.dmErr = fmt.Errorf("dm closed")

		w := app.do(t, http.MethodPost, "/api/v1/replies", map[string]any{
			"orderId": 1,
			"message": "hello",
		})
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeDeliveryFailed, resp.Error.Code)

		o, err := app.store.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, o.Replied)
	})
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.GatewayReady)
}
