// Package metadata provides typed service property values and a
// case-insensitive property bag.
//
// # Values
//
// A property value is either a scalar or an ordered sequence of scalars
// (a multi-valued property):
//
//   - String: metadata.String("java.lang.String")
//   - Int: metadata.Int(42)
//   - Float: metadata.Float(3.14)
//   - Bool: metadata.Bool(true)
//   - Array: metadata.Strings("a", "b")
//
// # Properties
//
// Property names are case-insensitive, as in an OSGi-style service
// registry:
//
//	props := metadata.NewProperties(map[string]metadata.Value{
//	    "objectClass": metadata.Strings("foo.Bar"),
//	    "service.id":  metadata.Int(12),
//	})
//	v, _ := props.Get("OBJECTCLASS")
//
// String values are interned with the unique package; registries carry
// the same class names and property values across thousands of services.
package metadata
