// Package acl translates downstream HTTP outcomes into domain errors so that
// transport details never leak past the adapter boundary.
//
// The only downstream is the mapping library host. [ScriptClient] fetches the
// library script once and reports whether the browser will be able to run it:
//   - transport failure → [domain.ErrUnavailable]
//   - 401/403 → [domain.ErrForbidden] (key rejected)
//   - 404 → [domain.ErrNotFound]
//   - any other non-2xx → [domain.ErrUnavailable]
package acl
