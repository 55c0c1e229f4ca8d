// Package testutil provides testing utilities for regindex.
//
// This package is intended for use in tests and benchmarks only.
//
// # Registry
//
// Registry is an in-memory service registry that implements
// tracker.Context, so indices can be opened against it:
//
//	reg := testutil.NewRegistry()
//	idx.Open(reg)
//	svc := reg.Register(map[string]metadata.Value{"objectClass": metadata.Strings("foo.Bar")})
//	reg.Modify(svc, newProps)
//	reg.Unregister(svc)
//
// # Listeners
//
// Recorder records delivered events for assertions.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	props := rng.ServiceProps(classes, []string{"cid"}, 4)
package testutil
