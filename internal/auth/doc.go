// Package auth authenticates catalog users.
//
// Two strategies sit behind the Authenticator interface:
//   - SessionAuthenticator reads the scs session cookie set by the HTML
//     login and registration pages;
//   - TokenAuthenticator reads "Authorization: Token <t>" (or Bearer) on the
//     REST routes. Tokens are opaque, one per user, and stored as SHA-256.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # enables CSRF on the HTML pages
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h                 # 0 means tokens never expire
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=false
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	svc := auth.NewService(db, cfg.Auth, auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth)))
//	api.Use(auth.LoadPrincipal(auth.NewTokenAuthenticator(svc)), auth.RequireAPIAuth())
//
// Extract the caller in handlers:
//
//	user := auth.GetUser(c) // nil when anonymous
package auth
