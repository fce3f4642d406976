// Package session maintains the single authenticated session the gateway
// holds with the upstream prayer-times provider.
//
// A Manager starts empty and logs in on first use. Every caller that needs a
// token goes through AcquireAccessToken; when the held access token is missing
// or within the expiry margin (two minutes by default) of its "exp" claim, one
// renewal is started and every concurrent caller waits on it:
//
//	mgr := session.NewManager(session.NewHTTPAuthority(baseURL, creds, httpClient))
//	token, err := mgr.AcquireAccessToken(ctx)
//
// Renewal tries the refresh token first and falls back to a full login. After
// the upstream rejects a token with 401, callers use ForceLogin instead.
//
// Keeper optionally renews on a cron schedule.
package session
