package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"outdoor-furniture/internal/core/auth"
	"outdoor-furniture/internal/core/config"
	"outdoor-furniture/internal/domain"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/store/memstore"
	"outdoor-furniture/internal/transport/http/ez"
	"outdoor-furniture/internal/transport/http/handler"
)

type env struct {
	t   *testing.T
	h   http.Handler
	st  domain.Store
	dir *service.Directory
	jwt *auth.JWTer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.NewStore()
	l := zap.NewNop()
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "outdoor-furniture", TTL: time.Hour}
	dir := service.NewDirectory(st.Users, l)
	app := config.App{
		Env: "test",
		Limits: config.Limits{
			RPS: 10000, Burst: 10000, MaxConcurrent: 1000,
			MaxBodyBytes: 1 << 20, RequestTimeoutSec: 5,
		},
	}
	r := NewAPIEngine(l, app, Deps{
		JWT:       j,
		Directory: dir,
		Purchases: service.NewPurchases(st.Purchases),
		Catalog:   service.NewCatalog(st.Products, nil, time.Minute),
		Checks:    map[string]handler.Pinger{"store": func(context.Context) error { return nil }},
	})
	return &env{t: t, h: r, st: st, dir: dir, jwt: j}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *env) do(method, path, token string, body any) (int, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	var out envelope
	if bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (e *env) user(email string, cat domain.Category) *domain.User {
	e.t.Helper()
	u, _, err := e.dir.Create(context.Background(), service.NewUser{Email: email, Name: "n-" + email, Photo: "p.png", Category: string(cat)})
	require.NoError(e.t, err)
	return u
}

func (e *env) token(email string) string {
	e.t.Helper()
	tok, err := e.jwt.Issue(email)
	require.NoError(e.t, err)
	return tok
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestSystemRoutes(t *testing.T) {
	e := newEnv(t)

	code, out := e.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.Banner, decode[string](t, out.Data))

	code, out = e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", decode[map[string]string](t, out.Data)["store"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestJWTRoute(t *testing.T) {
	e := newEnv(t)
	e.user("buyer@shop.io", domain.CategoryBuyer)

	t.Run("unknown email is 403 with empty token", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/jwt?email=ghost@shop.io", "", nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "forbidden access", out.Msg)
		assert.JSONEq(t, `{"accessToken":""}`, string(out.Data))
	})

	t.Run("invalid email is 400", func(t *testing.T) {
		code, _ := e.do(http.MethodGet, "/jwt?email=nope", "", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("known email gets a verifiable token", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/jwt?email=Buyer@Shop.io", "", nil)
		require.Equal(t, http.StatusOK, code)
		tok := decode[map[string]string](t, out.Data)["accessToken"]
		claims, err := e.jwt.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "buyer@shop.io", claims.Email)
	})
}

func TestUserRoutes(t *testing.T) {
	e := newEnv(t)

	code, out := e.do(http.MethodPost, "/users", "", map[string]string{"email": "new@shop.io", "name": "New", "category": "Seller"})
	require.Equal(t, http.StatusOK, code)
	created := decode[struct {
		User          domain.User `json:"user"`
		AlreadyExists bool        `json:"alreadyExists"`
	}](t, out.Data)
	assert.False(t, created.AlreadyExists)
	assert.Equal(t, domain.CategorySeller, created.User.Category)

	code, out = e.do(http.MethodPost, "/users", "", map[string]string{"email": "new@shop.io"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(out.Data), `"alreadyExists":true`)

	code, _ = e.do(http.MethodPost, "/users", "", map[string]string{"email": "x@shop.io", "category": "Wizard"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = e.do(http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]domain.User](t, out.Data), 1)
}

func TestRoleChecks(t *testing.T) {
	e := newEnv(t)
	e.user("seller@shop.io", domain.CategorySeller)
	e.user("buyer@shop.io", domain.CategoryBuyer)
	_, err := e.dir.PromoteEmailToAdmin(context.Background(), e.user("admin@shop.io", domain.CategoryNone).Email)
	require.NoError(t, err)

	cases := []struct {
		path string
		key  string
		want bool
	}{
		{"/users/admin/admin@shop.io", "admin", true},
		{"/users/admin/seller@shop.io", "admin", false},
		{"/users/admin/ghost@shop.io", "admin", false},
		{"/users/seller/seller@shop.io", "seller", true},
		{"/users/seller/buyer@shop.io", "seller", false},
		{"/users/seller/ghost@shop.io", "seller", false},
		{"/users/buyer/buyer@shop.io", "buyer", true},
		{"/users/buyer/admin@shop.io", "buyer", false},
		{"/users/buyer/ghost@shop.io", "buyer", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			code, out := e.do(http.MethodGet, tc.path, "", nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, map[string]bool{tc.key: tc.want}, decode[map[string]bool](t, out.Data))
		})
	}
}

func TestPromoteToAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user("admin@shop.io", domain.CategoryNone)
	_, err := e.dir.PromoteEmailToAdmin(ctx, admin.Email)
	require.NoError(t, err)
	target := e.user("target@shop.io", domain.CategorySeller)
	e.user("seller@shop.io", domain.CategorySeller)

	path := "/users/admin/" + target.ID

	t.Run("no token is 401", func(t *testing.T) {
		code, out := e.do(http.MethodPut, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "unauthorized access", out.Msg)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		code, _ := e.do(http.MethodPut, path, e.token("seller@shop.io"), nil)
		assert.Equal(t, http.StatusForbidden, code)
		ok, err := e.dir.IsAdmin(ctx, target.Email)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired admin token is 403", func(t *testing.T) {
		old := &auth.JWTer{Secret: e.jwt.Secret, Issuer: e.jwt.Issuer, TTL: time.Minute,
			Now: func() time.Time { return time.Now().Add(-time.Hour) }}
		tok, err := old.Issue(admin.Email)
		require.NoError(t, err)
		code, _ := e.do(http.MethodPut, path, tok, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("admin promotes and leaves other fields", func(t *testing.T) {
		code, out := e.do(http.MethodPut, path, e.token(admin.Email), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(out.Data), `"matchedCount":1`)

		got, err := e.dir.Lookup(ctx, target.Email)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.Equal(t, target.Name, got.Name)
		assert.Equal(t, target.Photo, got.Photo)
		assert.Equal(t, domain.CategorySeller, got.Category)
		assert.Equal(t, target.ID, got.ID)
	})

	t.Run("unknown ids each upsert a record", func(t *testing.T) {
		type upserted struct {
			ID string `json:"upsertedId"`
		}
		var ids []string
		for _, id := range []string{"ghost1", "ghost2"} {
			code, out := e.do(http.MethodPut, "/users/admin/"+id, e.token(admin.Email), nil)
			require.Equal(t, http.StatusOK, code, string(out.Data))
			ids = append(ids, decode[upserted](t, out.Data).ID)
		}
		assert.Equal(t, []string{"ghost1", "ghost2"}, ids)
	})
}

func TestBuyingRoutes(t *testing.T) {
	e := newEnv(t)
	e.user("a@shop.io", domain.CategoryBuyer)
	e.user("b@shop.io", domain.CategoryBuyer)
	order := map[string]any{"service_name": "Teak Bench", "service_id": "s1", "email": "a@shop.io", "price": 120.5}

	code, out := e.do(http.MethodPost, "/buying", "", order)
	require.Equal(t, http.StatusOK, code)
	first := decode[service.PurchaseResult](t, out.Data)
	assert.False(t, first.AlreadyPurchased)
	assert.NotEmpty(t, first.InsertedID)

	code, out = e.do(http.MethodPost, "/buying", "", order)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[service.PurchaseResult](t, out.Data).AlreadyPurchased)

	t.Run("owner lists own purchases", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/buying?email=a@shop.io", e.token("a@shop.io"), nil)
		require.Equal(t, http.StatusOK, code)
		ps := decode[[]domain.Purchase](t, out.Data)
		require.Len(t, ps, 1)
		assert.Equal(t, 1, ps[0].Quantity)
	})

	t.Run("other email is 403", func(t *testing.T) {
		code, _ := e.do(http.MethodGet, "/buying?email=a@shop.io", e.token("b@shop.io"), nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("malformed email is 403", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/buying?email=not-an-email", e.token("b@shop.io"), nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, http.StatusForbidden, out.Code)
	})

	t.Run("missing email is 403", func(t *testing.T) {
		code, _ := e.do(http.MethodGet, "/buying", e.token("b@shop.io"), nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("no token is 401", func(t *testing.T) {
		code, _ := e.do(http.MethodGet, "/buying?email=a@shop.io", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("missing service name is 400", func(t *testing.T) {
		code, _ := e.do(http.MethodPost, "/buying", "", map[string]any{"email": "a@shop.io"})
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestBuyingConcurrentDuplicates(t *testing.T) {
	e := newEnv(t)
	order := map[string]any{"service_name": "Hammock", "email": "c@shop.io", "price": 80}

	const n = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		already int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(order)
			req := httptest.NewRequest(http.MethodPost, "/buying", &buf)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.h.ServeHTTP(w, req)
			var out struct {
				Data service.PurchaseResult `json:"data"`
			}
			if json.Unmarshal(w.Body.Bytes(), &out) == nil && out.Data.AlreadyPurchased {
				mu.Lock()
				already++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ps, err := e.st.Purchases.Find(context.Background(), domain.Filter{"email": "c@shop.io"})
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	assert.Equal(t, n-1, already)
}

func TestCatalogRoutes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := []domain.Product{
		{ID: "f1", Section: domain.SectionFurniture, Name: "Deck Chair"},
		{ID: "a1", Section: domain.SectionAll, ServiceID: "s1", Name: "Lounger"},
		{ID: "a2", Section: domain.SectionAll, ServiceID: "s2", Name: "Parasol"},
		{ID: "t1", Section: domain.SectionTrending, Name: "Swing"},
		{ID: "n1", Section: domain.SectionNewDesign, Name: "Pod"},
	}
	for i := range seed {
		require.NoError(t, e.st.Products.InsertOne(ctx, &seed[i]))
	}

	for path, want := range map[string]string{
		"/furniture":         "f1",
		"/allProduct":        "a1",
		"/trandingFurniture": "t1",
		"/newDesign":         "n1",
		"/allProduct/s2":     "a2",
	} {
		t.Run(path, func(t *testing.T) {
			code, out := e.do(http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusOK, code)
			ps := decode[[]domain.Product](t, out.Data)
			require.NotEmpty(t, ps)
			ids := make([]string, 0, len(ps))
			for _, p := range ps {
				ids = append(ids, p.ID)
			}
			assert.Contains(t, ids, want)
		})
	}

	t.Run("single product", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/singleProduct/t1", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Swing", decode[domain.Product](t, out.Data).Name)
	})

	t.Run("unknown product is null data", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/singleProduct/ghost", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "null", string(out.Data))
	})

	t.Run("empty section is an empty list", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/allProduct/none", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "[]", string(out.Data))
	})
}

func TestSellerRoutes(t *testing.T) {
	e := newEnv(t)
	e.user("seller@shop.io", domain.CategorySeller)
	e.user("buyer@shop.io", domain.CategoryBuyer)
	item := map[string]any{"name": "Fire Pit", "price": 300, "rating": 4.5}

	code, _ := e.do(http.MethodPost, "/seller/addProduct", "", item)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out := e.do(http.MethodPost, "/seller/addProduct", e.token("seller@shop.io"), item)
	require.Equal(t, http.StatusOK, code)
	p := decode[domain.Product](t, out.Data)
	assert.Equal(t, domain.SectionSeller, p.Section)
	assert.Equal(t, "seller@shop.io", p.SellerEmail)

	code, _ = e.do(http.MethodPost, "/seller/addProduct", e.token("seller@shop.io"), map[string]any{"name": "Bad", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, code)

	t.Run("buyer cannot list seller products", func(t *testing.T) {
		code, _ := e.do(http.MethodGet, "/seller/addProduct", e.token("buyer@shop.io"), nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("seller lists own products", func(t *testing.T) {
		code, out := e.do(http.MethodGet, "/seller/addProduct", e.token("seller@shop.io"), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decode[[]domain.Product](t, out.Data), 1)
	})

	t.Run("delete", func(t *testing.T) {
		code, out := e.do(http.MethodDelete, fmt.Sprintf("/seller/addProduct/%s", p.ID), "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"deletedCount":1}`, string(out.Data))

		code, out = e.do(http.MethodDelete, "/seller/addProduct/"+p.ID, "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"deletedCount":0}`, string(out.Data))
	})
}

func TestMountAllOrder(t *testing.T) {
	var order []string
	mods := []APIModule{
		recorder{name: "default", log: &order},
		ranked{recorder{name: "second", log: &order}, 2},
		ranked{recorder{name: "first", log: &order}, 1},
	}
	MountAll(ez.New(&gin.New().RouterGroup, nil), mods...)
	assert.Equal(t, []string{"first", "second", "default"}, order)
}

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) MountAPI(ez.EZ) { *r.log = append(*r.log, r.name) }

type ranked struct {
	recorder
	prio int
}

func (r ranked) Priority() int { return r.prio }
