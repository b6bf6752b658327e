package consolesdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingNavigator counts redirects to the login entry point.
type recordingNavigator struct {
	mu      sync.Mutex
	reasons []error
}

func (n *recordingNavigator) RedirectToLogin(_ context.Context, reason error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reasons = append(n.reasons, reason)
}

func (n *recordingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reasons)
}

type observedCall struct {
	method, route, outcome string
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (o *recordingObserver) ObserveCall(method, route, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedCall{method, route, outcome})
}

type failingLimiter struct{ err error }

func (l failingLimiter) Wait(context.Context) error { return l.err }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *MemoryTokenStore, *recordingNavigator) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewMemoryTokenStore("")
	nav := &recordingNavigator{}
	opts = append([]Option{WithTokenStore(store), WithNavigator(nav)}, opts...)

	return NewClient(srv.URL+"/api/", opts...), store, nav
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	t.Parallel()

	client := NewClient(" https://console.example.com/api/ ")
	require.Equal(t, "https://console.example.com/api", client.BaseURL)
	require.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)
}

func TestCallAttachesBearerToken(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		headers []http.Header
	)
	client, store, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		require.Equal(t, "/api/dashboard", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"code":0,"data":{}}`)
	})

	t.Run("without token", func(t *testing.T) {
		_, err := client.Call(context.Background(), http.MethodGet, "/dashboard", RequestOptions{})
		require.NoError(t, err)
	})

	t.Run("with token", func(t *testing.T) {
		require.NoError(t, store.SetToken(context.Background(), "abc.def.ghi"))
		_, err := client.Call(context.Background(), http.MethodGet, "/dashboard", RequestOptions{
			Headers: map[string]string{"Authorization": "Bearer forged", "X-Trace": "1"},
		})
		require.NoError(t, err)
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, headers, 2)

	require.Empty(t, headers[0].Get("Authorization"))
	require.Equal(t, "application/json", headers[0].Get("Accept"))
	require.NotEmpty(t, headers[0].Get("X-Request-ID"))

	require.Equal(t, "Bearer abc.def.ghi", headers[1].Get("Authorization"))
	require.Equal(t, "1", headers[1].Get("X-Trace"))
	require.NotEqual(t, headers[0].Get("X-Request-ID"), headers[1].Get("X-Request-ID"))
}

func TestCallSendsJSONBody(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body BalanceAdjustment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, BalanceAdjustment{Amount: 12.5, Type: BalanceAdd, Remark: "top up"}, body)

		writeJSON(w, http.StatusOK, `{"code":200,"msg":"balance updated"}`)
	})

	err := client.AdjustAgentBalance(context.Background(), 9, BalanceAdjustment{
		Amount: 12.5,
		Type:   BalanceAdd,
		Remark: "top up",
	})
	require.NoError(t, err)
}

func TestCallSessionExpired(t *testing.T) {
	t.Parallel()

	client, store, nav := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
	})
	require.NoError(t, store.SetToken(context.Background(), "stale"))

	var order []string
	client.OnSessionExpired(func(ctx context.Context) {
		token, err := store.Token(ctx)
		require.NoError(t, err)
		require.Empty(t, token)
		require.Zero(t, nav.count())
		order = append(order, "handler")
	})

	env, err := client.Call(context.Background(), http.MethodGet, "/user/list", RequestOptions{})
	require.Nil(t, env)
	require.Error(t, err)
	require.True(t, IsKind(err, KindSessionExpired))
	require.ErrorIs(t, err, ErrSessionExpired)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	token, err := store.Token(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)

	require.Equal(t, 1, nav.count())
	require.Equal(t, []string{"handler"}, order)
}

func TestCallSessionExpiredAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	client, store, nav := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{}`)
	})
	require.NoError(t, store.SetToken(ctx, "stale"))

	client.OnSessionExpired(func(context.Context) { cancel() })

	_, err := client.Call(ctx, http.MethodGet, "/auth/current-user", RequestOptions{})
	require.True(t, IsKind(err, KindSessionExpired))
	require.Equal(t, 1, nav.count())
}

func TestCallSessionExpiredWithTruncatedBody(t *testing.T) {
	t.Parallel()

	client, store, nav := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":`)
	})
	require.NoError(t, store.SetToken(context.Background(), "tok"))

	_, err := client.Call(context.Background(), http.MethodGet, "/user/list", RequestOptions{})
	require.True(t, IsKind(err, KindSessionExpired))
	require.ErrorIs(t, err, ErrSessionExpired)

	token, err := store.Token(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
	require.Equal(t, 1, nav.count())
}

func TestCallApplicationFailure(t *testing.T) {
	t.Parallel()

	client, store, nav := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":10001,"msg":"insufficient balance"}`)
	})
	require.NoError(t, store.SetToken(context.Background(), "tok"))

	_, err := client.Call(context.Background(), http.MethodPost, "/agent/1/balance", RequestOptions{})
	require.True(t, IsKind(err, KindApplication))
	require.EqualError(t, err, "insufficient balance")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 10001, apiErr.Code)

	token, _ := store.Token(context.Background())
	require.Equal(t, "tok", token)
	require.Zero(t, nav.count())
}

func TestCallTransportFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "detail string", status: http.StatusBadRequest, body: `{"detail":"username already exists"}`, wantMessage: "username already exists"},
		{name: "detail object", status: http.StatusUnprocessableEntity, body: `{"detail":{"code":2,"message":"invalid pool"}}`, wantMessage: "invalid pool"},
		{name: "message", status: http.StatusForbidden, body: `{"message":"forbidden"}`, wantMessage: "forbidden"},
		{name: "no body", status: http.StatusBadGateway, body: ``, wantMessage: "request failed with status 502"},
		{name: "html", status: http.StatusNotFound, body: `<h1>404</h1>`, wantMessage: "request failed with status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _, nav := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.Call(context.Background(), http.MethodGet, "/orders/dynamic", RequestOptions{})
			require.True(t, IsKind(err, KindTransport))
			require.EqualError(t, err, tt.wantMessage)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Zero(t, nav.count())
		})
	}
}

func TestCallNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	store := NewMemoryTokenStore("tok")
	nav := &recordingNavigator{}
	client := NewClient(base, WithTokenStore(store), WithNavigator(nav))

	_, err := client.Call(context.Background(), http.MethodGet, "/dashboard", RequestOptions{})
	require.True(t, IsKind(err, KindNetwork))
	require.ErrorIs(t, err, ErrNetworkUnreachable)
	require.EqualError(t, err, "network unreachable")

	token, _ := store.Token(context.Background())
	require.Equal(t, "tok", token)
	require.Zero(t, nav.count())
}

func TestCallTimeoutIsNetworkFailure(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	_, err := client.Call(context.Background(), http.MethodGet, "/dashboard", RequestOptions{})
	require.True(t, IsKind(err, KindNetwork))
}

func TestCallCancellationPassesThrough(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":0}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Call(ctx, http.MethodGet, "/dashboard", RequestOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, KindOf(err))
}

func TestCallLimiterErrorPassesThrough(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	limitErr := errors.New("rate: Wait(n=1) would exceed context deadline")
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{"code":0}`)
	}, WithLimiter(failingLimiter{err: limitErr}))

	_, err := client.Call(context.Background(), http.MethodGet, "/dashboard", RequestOptions{})
	require.ErrorIs(t, err, limitErr)
	require.Zero(t, hits.Load())
}

func TestCallObserver(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/open/app/agent/3":
			writeJSON(w, http.StatusOK, `{"code":0,"data":{"id":3,"username":"agent3"}}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{}`)
		}
	}, WithObserver(obs))

	agent, err := client.GetAgent(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "agent3", agent.Username)

	_, err = client.Dashboard(context.Background())
	require.Error(t, err)

	require.Equal(t, []observedCall{
		{http.MethodGet, "/open/app/agent/{id}", "success"},
		{http.MethodGet, "/open/app/dashboard/info/v2", "session_expired"},
	}, obs.calls)
}

func TestValidationHappensBeforeCall(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{"code":0}`)
	})
	ctx := context.Background()

	var ve *ValidationError

	_, err := client.ListAgents(ctx, PageQuery{PageSize: 500})
	require.True(t, errors.As(err, &ve))
	require.Equal(t, []string{"pagesize must be at most 100"}, ve.Fields)

	err = client.AdjustAgentBalance(ctx, 1, BalanceAdjustment{Amount: 0, Type: "double"})
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 2)

	err = client.UpdateAgentStatus(ctx, 1, AgentStatusUpdate{Status: "paused"})
	require.True(t, errors.As(err, &ve))

	_, err = client.CreateUser(ctx, CreateCustomerRequest{Username: "u", Password: "secret1", Email: "nope"})
	require.True(t, errors.As(err, &ve))

	_, err = client.ListDynamicOrders(ctx, OrderFilter{StartDate: "01/02/2024"})
	require.True(t, errors.As(err, &ve))

	err = client.ChangePassword(ctx, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret1"})
	require.True(t, errors.As(err, &ve))

	err = client.UpdateResourcePrices(ctx, ResourcePriceUpdate{1: -1})
	require.True(t, errors.As(err, &ve))

	err = client.UpdateAgentPrices(ctx, 1, AgentPriceUpdate{})
	require.True(t, errors.As(err, &ve))

	negative := -0.5
	err = client.UpdateAgentPrices(ctx, 1, AgentPriceUpdate{StaticProxyPrice: &negative})
	require.True(t, errors.As(err, &ve))
	require.Equal(t, []string{"static_proxy_price must not be negative"}, ve.Fields)

	_, err = client.SyncProductPrices(ctx, "prices.csv", strings.NewReader("a,b"))
	require.True(t, errors.As(err, &ve))

	require.Zero(t, hits.Load())
}

func TestListDynamicOrdersQuery(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/dynamic", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "50", q.Get("page_size"))
		require.Equal(t, "17", q.Get("user_id"))
		require.Equal(t, "pool1", q.Get("pool_type"))
		require.Equal(t, "2024-01-01", q.Get("start_date"))
		require.False(t, q.Has("order_no"))
		require.False(t, q.Has("end_date"))

		writeJSON(w, http.StatusOK, `{"code":0,"data":{"list":[{"id":1,"order_no":"D1","traffic":1.5}],"total":1,"page":2,"page_size":50}}`)
	})

	page, err := client.ListDynamicOrders(context.Background(), OrderFilter{
		PageQuery: PageQuery{Page: 2, PageSize: 50},
		UserID:    17,
		PoolType:  "pool1",
		StartDate: "2024-01-01",
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, 50, page.PageSize)
	require.Equal(t, "D1", page.List[0].OrderNo)
}

func TestListUsersQuery(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "20", q.Get("pageSize"))
		require.Equal(t, "bob", q.Get("username"))
		require.Equal(t, "active", q.Get("status"))

		writeJSON(w, http.StatusOK, `{"data":{"list":[{"id":4,"username":"bob","status":"active"}],"total":1}}`)
	})

	page, err := client.ListUsers(context.Background(), CustomerFilter{
		PageQuery: PageQuery{PageSize: 20},
		Username:  "bob",
		Status:    "active",
	})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	require.Equal(t, "bob", page.List[0].Username)
}

func TestChangePasswordUsesQuery(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/password", r.URL.Path)
		require.Equal(t, "old-secret", r.URL.Query().Get("old_password"))
		require.Equal(t, "new-secret", r.URL.Query().Get("new_password"))
		writeJSON(w, http.StatusOK, `{"code":0,"message":"password changed"}`)
	})

	err := client.ChangePassword(context.Background(), ChangePasswordRequest{
		OldPassword: "old-secret",
		NewPassword: "new-secret",
	})
	require.NoError(t, err)
}

func TestPriceEndpoints(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/settings/price":
			writeJSON(w, http.StatusOK, `{"code":0,"data":{"dynamic":{"pool1":0.1},"static":{"residential":0.3}}}`)
		case "POST /api/settings/price":
			var body map[string]float64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, map[string]float64{"resource_1": 0.15, "resource_3": 0.5}, body)
			writeJSON(w, http.StatusOK, `{"code":0,"msg":"success"}`)
		case "GET /api/settings/agent/5/prices":
			writeJSON(w, http.StatusOK, `{"code":0,"msg":"success","data":{"dynamic":{"pool1":100,"pool2":200},"static":{"residential":300}}}`)
		case "POST /api/settings/agent/5/prices":
			var body map[string]float64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, map[string]float64{"dynamic_proxy_price": 0.2}, body)
			writeJSON(w, http.StatusOK, `{"code":0,"message":"updated","data":{"agent_id":5}}`)
		case "POST /api/product/prices/import":
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			require.Equal(t, "prices.xlsx", header.Filename)
			require.Equal(t, "sheet", string(content))
			writeJSON(w, http.StatusOK, `{"code":200,"message":"ok","data":{"total":4,"success":3,"failed":1}}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
		}
	})
	ctx := context.Background()

	prices, err := client.ResourcePrices(ctx)
	require.NoError(t, err)
	require.InDelta(t, 0.3, prices["static"]["residential"], 1e-9)

	require.NoError(t, client.UpdateResourcePrices(ctx, ResourcePriceUpdate{1: 0.15, 3: 0.5}))

	agentPrices, err := client.AgentPrices(ctx, 5)
	require.NoError(t, err)
	require.InDelta(t, 200, agentPrices["dynamic"]["pool2"], 1e-9)

	dynamic := 0.2
	require.NoError(t, client.UpdateAgentPrices(ctx, 5, AgentPriceUpdate{DynamicProxyPrice: &dynamic}))

	result, err := client.SyncProductPrices(ctx, "/tmp/prices.xlsx", strings.NewReader("sheet"))
	require.NoError(t, err)
	require.Equal(t, PriceSyncResult{Total: 4, Success: 3, Failed: 1}, *result)

	_, err = client.AgentPrices(ctx, 6)
	require.True(t, IsKind(err, KindTransport))
	require.EqualError(t, err, "Not Found")
}

func TestStatusUpdatesUseQuery(t *testing.T) {
	t.Parallel()

	var paths []string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "disabled", r.URL.Query().Get("status"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Empty(t, body)

		paths = append(paths, r.URL.Path)
		writeJSON(w, http.StatusOK, `{"code":0,"msg":"success","data":{"id":3,"status":"disabled"}}`)
	})
	ctx := context.Background()

	require.NoError(t, client.UpdateAgentStatus(ctx, 3, AgentStatusUpdate{Status: "disabled"}))
	require.NoError(t, client.UpdateUserStatus(ctx, 9, CustomerStatusUpdate{Status: "disabled"}))
	require.Equal(t, []string{"/api/open/app/agent/3/status", "/api/open/app/user/9/status"}, paths)
}

func TestClientLoginMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no data", body: `{"code":0,"message":"ok"}`},
		{name: "no token", body: `{"code":0,"data":{"user":{"id":1,"username":"admin"}}}`},
		{name: "no user", body: `{"code":0,"data":{"token":"abc"}}`},
		{name: "wrong shape", body: `{"code":0,"data":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})

			resp, err := client.Login(context.Background(), LoginRequest{Username: "admin", Password: "secret1"})
			require.Nil(t, resp)
			require.True(t, IsKind(err, KindMalformed))
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}
