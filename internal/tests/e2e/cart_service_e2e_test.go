// Package e2e provides end-to-end tests for the cart service.
// The suite runs the real HTTP handler in an httptest.Server on top of a SQLite store in a
// temporary directory, so carts survive between requests the same way they do in production.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/abgdnv/shopcart/internal/cart"
	"github.com/abgdnv/shopcart/internal/cart/app"
	"github.com/abgdnv/shopcart/internal/cart/service"
	"github.com/abgdnv/shopcart/internal/cart/store"
	"github.com/abgdnv/shopcart/internal/config"
	"github.com/abgdnv/shopcart/internal/platform/web"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "CART_SVC_SKIP_E2E_TESTS"

const (
	catalogURL = "/api/v1/catalog"
	cartURL    = "/api/v1/cart"
)

// CartServiceE2ESuite is a test suite for end-to-end tests of the cart service.
type CartServiceE2ESuite struct {
	suite.Suite
	dir        string
	kv         store.Store
	server     *httptest.Server
	httpClient *http.Client
	logger     *slog.Logger
	ctx        context.Context
}

// SetupSuite opens the SQLite store and starts the application handler.
func (s *CartServiceE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s.dir = s.T().TempDir()

	storageCfg := config.StorageConfig{Driver: config.DriverSQLite, Key: cart.DefaultKey, MaxValueBytes: 5 << 20}
	storageCfg.SQLite.Path = filepath.Join(s.dir, "cart.db")
	var err error
	s.kv, err = app.OpenStore(s.ctx, storageCfg, s.logger)
	require.NoError(s.T(), err, "Failed to open SQLite store")

	s.startServer()
}

// startServer (re)creates the application on top of the same store.
func (s *CartServiceE2ESuite) startServer() {
	if s.server != nil {
		s.server.Close()
	}
	deps := app.SetupDependencies(s.kv, cart.DefaultKey, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *CartServiceE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.kv != nil {
		s.Require().NoError(s.kv.Close())
	}
}

func TestCartServiceE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(CartServiceE2ESuite))
}

// do sends a request with an optional JSON payload and returns the status and raw body.
func (s *CartServiceE2ESuite) do(method, path string, cartID *uuid.UUID, payload any) (int, []byte) {
	s.T().Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, body)
	s.Require().NoError(err)
	if cartID != nil {
		req.Header.Set(web.XCartID, cartID.String())
	}
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, raw
}

// doCart sends a cart request and decodes the CartDto response.
func (s *CartServiceE2ESuite) doCart(method, path string, cartID uuid.UUID, payload any) service.CartDto {
	s.T().Helper()
	status, raw := s.do(method, path, &cartID, payload)
	s.Require().Equal(http.StatusOK, status, "unexpected status, body: %s", raw)
	var dto service.CartDto
	s.Require().NoError(json.Unmarshal(raw, &dto))
	return dto
}

func (s *CartServiceE2ESuite) add(cartID uuid.UUID, productID int) service.CartDto {
	return s.doCart(http.MethodPost, cartURL+"/items", cartID, service.AddItemDto{ProductID: productID})
}

func (s *CartServiceE2ESuite) remove(cartID uuid.UUID, productID int) service.CartDto {
	return s.doCart(http.MethodDelete, cartURL+"/items/"+strconv.Itoa(productID), cartID, nil)
}

func (s *CartServiceE2ESuite) TestCatalog() {
	// when
	status, raw := s.do(http.MethodGet, catalogURL, nil, nil)

	// then
	s.Require().Equal(http.StatusOK, status)
	var list []service.ProductDto
	s.Require().NoError(json.Unmarshal(raw, &list))
	s.Require().Len(list, 30)
	s.Equal("Example Item 30", list[29].Name)
	s.Equal("20.00", list[29].UnitPrice)

	status, _ = s.do(http.MethodGet, catalogURL+"/31", nil, nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *CartServiceE2ESuite) TestAddTwiceThenRemoveTwice() {
	// given
	cartID := uuid.New()

	// when
	s.add(cartID, 1)
	afterAdds := s.add(cartID, 1)
	s.remove(cartID, 1)
	afterRemoves := s.remove(cartID, 1)

	// then
	s.Require().Len(afterAdds.Items, 1)
	s.Equal(2, afterAdds.Items[0].Quantity)
	s.Equal(2, afterAdds.TotalItemCount)
	s.Equal("40.00", afterAdds.TotalPrice)
	s.Empty(afterRemoves.Items)
	s.Equal("0.00", afterRemoves.TotalPrice)
}

func (s *CartServiceE2ESuite) TestClear() {
	// given
	cartID := uuid.New()
	s.add(cartID, 1)
	s.add(cartID, 2)

	// when
	cleared := s.doCart(http.MethodDelete, cartURL, cartID, nil)

	// then
	s.Empty(cleared.Items)
	s.Equal(0, cleared.TotalItemCount)
	s.Empty(s.doCart(http.MethodGet, cartURL, cartID, nil).Items)
}

func (s *CartServiceE2ESuite) TestCartSurvivesRestart() {
	// given
	cartID := uuid.New()
	s.add(cartID, 4)
	s.add(cartID, 9)
	s.add(cartID, 4)

	// when
	s.startServer()
	restored := s.doCart(http.MethodGet, cartURL, cartID, nil)

	// then
	s.Require().Len(restored.Items, 2)
	s.Equal(4, restored.Items[0].ProductID)
	s.Equal(2, restored.Items[0].Quantity)
	s.Equal(9, restored.Items[1].ProductID)
	s.Equal("60.00", restored.TotalPrice)
}

func (s *CartServiceE2ESuite) TestMalformedStoredCartStartsEmpty() {
	// given
	cartID := uuid.New()
	key := cart.SessionKey(cart.DefaultKey, cartID.String())
	s.Require().NoError(s.kv.Set(s.ctx, key, []byte(`[{"id":1,"quantity":0}]`)))

	// when
	restored := s.doCart(http.MethodGet, cartURL, cartID, nil)
	added := s.add(cartID, 3)

	// then
	s.Empty(restored.Items)
	s.Require().Len(added.Items, 1)
	s.Equal(3, added.Items[0].ProductID)
}

func (s *CartServiceE2ESuite) TestStoredFormat() {
	// given
	cartID := uuid.New()

	// when
	s.add(cartID, 6)

	// then
	raw, err := s.kv.Get(s.ctx, cart.SessionKey(cart.DefaultKey, cartID.String()))
	s.Require().NoError(err)
	s.JSONEq(`[{"id":6,"name":"Example Item 6","price":20,"image":"/placeholder/product-1.jpg","quantity":1}]`, string(raw))
}

func (s *CartServiceE2ESuite) TestConcurrentAdds() {
	// given
	cartID := uuid.New()
	var wg sync.WaitGroup

	// when
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := s.do(http.MethodPost, cartURL+"/items", &cartID, service.AddItemDto{ProductID: 2})
			s.Equal(http.StatusOK, status)
		}()
	}
	wg.Wait()

	// then
	s.Equal(20, s.doCart(http.MethodGet, cartURL, cartID, nil).TotalItemCount)
}

func (s *CartServiceE2ESuite) TestErrors() {
	testCases := []struct {
		name         string
		method       string
		path         string
		withCart     bool
		payload      any
		expectedCode int
	}{
		{name: "missing cart header", method: http.MethodGet, path: cartURL, expectedCode: http.StatusBadRequest},
		{name: "unknown product", method: http.MethodPost, path: cartURL + "/items", withCart: true, payload: service.AddItemDto{ProductID: 31}, expectedCode: http.StatusNotFound},
		{name: "invalid product id", method: http.MethodPost, path: cartURL + "/items", withCart: true, payload: map[string]any{"product_id": -4}, expectedCode: http.StatusBadRequest},
		{name: "checkout", method: http.MethodPost, path: cartURL + "/checkout", withCart: true, expectedCode: http.StatusNotImplemented},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			var id *uuid.UUID
			if tc.withCart {
				v := uuid.New()
				id = &v
			}
			status, raw := s.do(tc.method, tc.path, id, tc.payload)
			s.Equal(tc.expectedCode, status, "body: %s", raw)
		})
	}
}
