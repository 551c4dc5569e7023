// Package membersdk is a Go client for the membership API.
//
// Requests are plain structs with a Validate method; the server runs the same
// validation, so callers may validate early to avoid a round trip.
//
//	c := membersdk.NewClient("http://localhost:8080")
//	login, err := c.Login(ctx, membersdk.LoginRequest{Email: "a@b.c", Password: "secret123"})
//	if err != nil {
//		if membersdk.IsUnauthorized(err) { ... }
//	}
//	me, err := c.WithToken(login.Token).Me(ctx)
//
// Failed envelopes are returned as *APIError carrying the HTTP status and the
// server's message.
package membersdk
