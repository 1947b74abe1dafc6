// Package auth provides registration, login and session handling for the
// book catalog.
//
// Passwords are stored as bcrypt hashes. Sessions are server-side (scs with
// a SQLite store) and delivered as an HttpOnly cookie. The identity
// middleware resolves the session's user id against the database on each
// request; handlers read the result through GetUserID / GetCurrentUser.
//
// Configuration comes from the environment:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
package auth
