package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bierdeckel/bierdeckel-api/database"
	"github.com/bierdeckel/bierdeckel-api/dto"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/models"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	db         *gorm.DB
	svc        *services.Services
	router     *gin.Engine
	restaurant models.Restaurant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:     db,
		svc:    services.New(db, events.Nop{}, utils.NewTokenManager("test-secret", time.Hour), "https://bierdeckel.test"),
		router: gin.New(),
	}
	env.restaurant = models.Restaurant{Name: "Brauhaus am Markt"}
	require.NoError(t, db.Create(&env.restaurant).Error)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestStatusForKinds(t *testing.T) {
	cases := map[services.Kind]int{
		services.KindNotFound:     http.StatusNotFound,
		services.KindConflict:     http.StatusConflict,
		services.KindValidation:   http.StatusBadRequest,
		services.KindUnavailable:  http.StatusUnprocessableEntity,
		services.KindUnauthorized: http.StatusUnauthorized,
		services.KindForbidden:    http.StatusForbidden,
		services.KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), kind.String())
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondServiceError(c, fmt.Errorf("query orders: %w", errors.New("disk I/O error")))
	})
	r.GET("/missing", func(c *gin.Context) {
		respondServiceError(c, fmt.Errorf("load: %w", services.ErrNotFound))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk")
	assert.Contains(t, w.Body.String(), errInternal.Error())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanRejectsNonNumericTable(t *testing.T) {
	env := newTestEnv(t)
	ctrl := NewSessionController(env.svc.Sessions)
	env.router.POST("/r/:restaurant_id/table/:table_number/scan", ctrl.Scan)

	w, resp := env.do(t, http.MethodPost, "/r/"+env.restaurant.ID+"/table/five/scan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Status)

	w, _ = env.do(t, http.MethodPost, "/r/"+env.restaurant.ID+"/table/5/scan", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrderDefaultsQuantityToOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Restaurants.CreateTable(ctx, env.restaurant.ID, 3)
	require.NoError(t, err)
	beer := models.MenuItem{RestaurantID: env.restaurant.ID, Name: "Helles", Price: 4.5, Category: "Bier", IsAvailable: true}
	require.NoError(t, env.db.Create(&beer).Error)

	sessions := NewSessionController(env.svc.Sessions)
	orders := NewOrderController(env.svc.Orders)
	env.router.POST("/r/:restaurant_id/table/:table_number/scan", sessions.Scan)
	env.router.POST("/session/:session_id/order", orders.PlaceOrder)

	w, resp := env.do(t, http.MethodPost, "/r/"+env.restaurant.ID+"/table/3/scan", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var session dto.SessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &session))

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": beer.ID},
			{"menu_item_id": beer.ID, "quantity": 2},
		},
	}
	w, resp = env.do(t, http.MethodPost, "/session/"+session.ID+"/order", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, 13.5, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestPlaceOrderBindingErrors(t *testing.T) {
	env := newTestEnv(t)
	orders := NewOrderController(env.svc.Orders)
	env.router.POST("/session/:session_id/order", orders.PlaceOrder)

	cases := map[string]interface{}{
		"no items":     map[string]interface{}{"items": []interface{}{}},
		"no menu item": map[string]interface{}{"items": []map[string]interface{}{{"quantity": 1}}},
	}
	for name, body := range cases {
		t.Run(strings.ReplaceAll(name, " ", "_"), func(t *testing.T) {
			w, _ := env.do(t, http.MethodPost, "/session/abc/order", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCoasterUpdateRequiresWeight(t *testing.T) {
	env := newTestEnv(t)
	coasters := NewCoasterController(env.svc.Coasters)
	env.router.POST("/bierdeckel/update", coasters.UpdateWeight)
	env.router.GET("/bierdeckel/:table_id", coasters.GetCoaster)

	table, err := env.svc.Restaurants.CreateTable(context.Background(), env.restaurant.ID, 1)
	require.NoError(t, err)

	w, _ := env.do(t, http.MethodPost, "/bierdeckel/update", map[string]interface{}{"table_id": table.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/bierdeckel/update", map[string]interface{}{"table_id": table.ID, "weight": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/bierdeckel/update", map[string]interface{}{"table_id": table.ID, "weight": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := env.do(t, http.MethodGet, "/bierdeckel/"+table.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var coaster dto.CoasterResponse
	require.NoError(t, json.Unmarshal(resp.Data, &coaster))
	assert.Equal(t, models.CoasterEmpty, coaster.Status)
}

func TestStaffHandlersNeedClaims(t *testing.T) {
	env := newTestEnv(t)
	orders := NewOrderController(env.svc.Orders)
	calls := NewServiceCallController(env.svc.ServiceCalls)
	menu := NewRestaurantController(env.svc.Restaurants)
	env.router.PUT("/order/:order_id/status/:status", orders.UpdateOrderStatus)
	env.router.PUT("/service-request/:call_id/status/:status", calls.UpdateServiceCallStatus)
	env.router.PUT("/menu/:item_id", menu.UpdateMenuItem)

	for _, path := range []string{"/order/o1/status/delivered", "/service-request/c1/status/done", "/menu/m1"} {
		w, _ := env.do(t, http.MethodPut, path, map[string]interface{}{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestPaySingleReportsAlreadyPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Restaurants.CreateTable(ctx, env.restaurant.ID, 7)
	require.NoError(t, err)
	session, err := env.svc.Sessions.Scan(ctx, env.restaurant.ID, 7)
	require.NoError(t, err)

	payments := NewPaymentController(env.svc.Payments)
	env.router.POST("/session/:session_id/pay", payments.PaySingle)

	w, resp := env.do(t, http.MethodPost, "/session/"+session.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Session already paid", resp.Message)

	w, _ = env.do(t, http.MethodPost, "/session/unknown/pay", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndPing(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/health", NewHealthController(env.db).Health)
	env.router.GET("/ping", Ping)

	w, resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)

	w, _ = env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
