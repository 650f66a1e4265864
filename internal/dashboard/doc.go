// Package dashboard provides the HTTP client for the library-dashboard
// backend API.
//
// The backend owns persistence, reading-list import, and the catalog
// scrapers; this package only speaks its request/response contract. Types
// mirror the wire payloads one-to-one so the rest of the app never touches
// raw JSON.
//
// Endpoints covered:
//
//	POST   /api/{source}/sync          import reading list from RSS
//	GET    /api/{source}/books         books with current availability
//	GET    /api/libraries              configured library catalogs
//	POST   /api/libraries              add a library
//	PUT    /api/libraries/{id}         partial update
//	DELETE /api/libraries/{id}         remove a library
//	POST   /api/availability/check     check one book now
//	POST   /api/availability/check-all start the bulk job
//	GET    /api/availability/job/{id}  poll the bulk job
//	POST   /api/checkout/borrow        borrow a copy
//	POST   /api/checkout/hold          place a hold
//
// Any non-2xx response is returned as an error; callers translate that into
// user-facing state rather than showing transport detail.
package dashboard
