/*
Package consolesdk is the client core of the proxy resale admin console.

# Overview

Every call to the backend goes through Client.Call. The backend is not
consistent about its response shape: some endpoints answer {"code":0,...},
some {"code":200,...} and some only {"data":...}. Call resolves each 2xx body
into one canonical Envelope with Code 0, or into a classified *Error:

	env, err := client.Call(ctx, http.MethodGet, "/open/app/agent/list", consolesdk.RequestOptions{})
	if err != nil {
		switch consolesdk.KindOf(err) {
		case consolesdk.KindSessionExpired:
			// token already cleared, operator sent to login
		case consolesdk.KindNetwork:
			// backend unreachable
		}
	}

Canonicalize is the pure function behind this and may be used on its own.

# Session

Session tracks who is logged in and owns writes to the TokenStore:

	client := consolesdk.NewClient("https://console.example.com/api",
		consolesdk.WithTokenStore(store),
		consolesdk.WithNavigator(nav),
	)
	session := consolesdk.NewSession(client)

	session.Initialize(ctx)
	if !session.State().IsAuthenticated {
		err := session.Login(ctx, username, password)
	}

A 401 from any call clears the stored token, moves the session to
ANONYMOUS and calls the Navigator, in that order.

# Feature Services

The typed methods on Client (ListAgents, AdjustAgentBalance, ListUsers,
ListDynamicOrders, ResourcePrices, Dashboard and so on) validate their input
with the `validate` struct tags before any network call and decode
Envelope.Data into the DTOs in types.go.
*/
package consolesdk
