// Package regindex provides pluggable filter indices for a dynamic service
// registry.
//
// Registry lookups and listener registrations carry LDAP-style filter
// strings. Evaluating every filter against every service scales poorly, so a
// Cache routes each class/filter pair to the first index that recognizes
// its shape and answers it with keyed lookups instead. When no index
// applies, the caller falls back to plain filter evaluation.
//
// # Quick Start
//
//	cache, _ := regindex.NewFromConfig("*aspect*;*adapter*;objectClass;objectClass,cid,!context")
//	registry.AddEventListener(cache)
//	_ = cache.Open(registry) // any tracker.Context
//	defer cache.Close()
//
//	refs, ok, err := cache.GetAllServiceReferences("", "(&(objectClass=foo.Bar)(cid=7))")
//	if !ok {
//	    // no index applies; evaluate the filter against every service
//	}
//
// # Index Configuration
//
// A configuration string lists indices separated by ';', consulted in
// order:
//
//   - "*aspect*" answers aspect lookups of the form
//     (&(objectClass=C)(&(|(!(ranking=*))(ranking<=N))(|(service.id=S)(aspect=S)))).
//   - "*adapter*" answers adapter lookups of the form
//     (&(objectClass=C)(|(service.id=S)(aspect=S))).
//   - Anything else is a multiproperty spec: comma-separated property names,
//     where '!' marks an optional property and '#' a multi-valued property
//     whose values are keyed one at a time.
//
// See package index/multiproperty for how references and filters map to
// composite keys.
//
// # Listeners
//
// AddServiceListener files a listener with the index its filter routes to;
// the Cache forwards every registry event to all indices, and each one
// notifies only the listeners whose keys the event's reference derives.
// Re-adding a listener with a new filter moves it.
//
// # Observability
//
// Logging uses log/slog through Logger. Metrics go through a
// MetricsCollector: BasicMetricsCollector keeps in-process counters and
// package metrics exports them to Prometheus.
package regindex
