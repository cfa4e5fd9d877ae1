// Package authkit provides session resolution, role-based access control and
// tenant isolation for multi-tenant applications.
//
// AuthKit sits between an identity provider (anything that can authenticate a
// user and emit session-change events) and a Postgres data store. It resolves
// an opaque authentication session into an authorized actor profile, enforces
// a linear role hierarchy for protected resources, and guarantees that every
// entity read and write is constrained to the acting profile's tenant.
//
// # Core Concepts
//
// Session: provider-issued proof of authentication for one subject. AuthKit
// never creates or destroys sessions itself, it only observes them.
//
// Profile: the authorization record for one subject: tenant, role and display
// fields. The profile fetched for the currently active session is the sole
// source of truth for access decisions.
//
// Role: one of a fixed, totally ordered set. A role satisfies a requirement
// when its rank is greater than or equal to the required rank:
//
//	operator < producer < consultant < manager < owner < admin
//
// Tenant: an isolated organization. Rows belonging to one tenant must never be
// visible to, or mutable by, actors of another tenant.
//
// # Basic Usage
//
//	// 1. Open the database and create the service
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	provider := authkit.NewMemoryProvider()
//	service := authkit.New(db, provider)
//
//	// 2. Run migrations
//	authkit.NewMigrationService(service).RunMigrations(ctx)
//
//	// 3. Start watching the identity provider
//	service.Start(ctx)
//	defer service.Close()
//
//	// 4. Authenticate
//	if err := service.SignIn(ctx, "ana@example.com", "secret"); err != nil {
//	    fmt.Println(authkit.UserMessage(err))
//	}
//
//	// 5. Gate access to a protected resource
//	state := service.Store().Snapshot()
//	switch authkit.Decide(state, authkit.RoleManager) {
//	case authkit.DecisionAllow:
//	    // render the page
//	case authkit.DecisionDenyInsufficientRole:
//	    // static forbidden response
//	case authkit.DecisionDenyUnauthenticated:
//	    // redirect to sign-in, preserving the requested location
//	}
//
//	// 6. Read and write tenant-scoped entities
//	producers, _ := service.ListProducers(ctx, state.Profile)
//
// # Session Convergence
//
// The SessionStore reconciles two independent inputs: the provider's
// already-persisted session at cold start, and the live stream of
// session-change events. Each input drives the same state transition. A
// profile fetch that is still in flight when a newer session event arrives is
// discarded on completion, so a stale subject's role and tenant are never
// attributed to the current actor.
//
// # Middleware Usage
//
//	mw := authkit.NewMiddleware(service.Store())
//
//	mux.Handle("/producers", mw.RequireAuth()(producersHandler))
//	mux.Handle("/reports", mw.RequireRole(authkit.RoleManager)(reportsHandler))
//
// Unauthenticated requests are redirected to the sign-in path with the
// original URL in the "from" query parameter. Authenticated requests that lack
// the required role receive a terminal 403 instead of a redirect, which
// avoids a redirect loop for under-privileged users.
//
// # Tenant Scoping
//
// Every entity operation routes through a TenantScope built from the acting
// profile. Reads are filtered by the actor's tenant, creates overwrite any
// caller-supplied tenant, and updates or deletes against a row outside the
// actor's tenant fail with ErrCrossTenantAccess without mutating anything.
// The backing store is expected to enforce the same constraint independently
// (row-level security), but AuthKit never relies on that alone.
package authkit
