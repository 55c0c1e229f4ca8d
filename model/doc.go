// Package model defines the service-registry types the filter indices
// operate on.
//
// # Identity
//
//   - ServiceID: registry-assigned, unique, monotonically increasing (uint64)
//   - Reference: a registered service; identity and ID never change,
//     properties may
//
// # Events
//
//   - EventKind: REGISTERED, MODIFIED, MODIFIED_ENDMATCH, UNREGISTERING
//   - Event: kind plus the affected Reference
//   - Listener: receives events for the services its filter selects
//
// # Example
//
//	svc := model.NewService(12, metadata.NewProperties(map[string]metadata.Value{
//	    model.PropertyObjectClass: metadata.Strings("foo.Bar"),
//	}))
//	l := model.ListenerFunc(func(ev model.Event) { fmt.Println(ev.Kind, ev.Reference.ID()) })
package model
