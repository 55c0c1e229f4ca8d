// Package multiproperty implements a filter index over a configured set of
// properties.
//
// A spec such as "objectClass,cid,!context" names the properties. Every
// tracked service that carries the required ones is filed under the
// composite keys its property values derive, and a filter that is a plain
// conjunction of equality clauses over the same properties is answered by
// a single key lookup:
//
//	idx, err := multiproperty.New("objectClass,cid,!context")
//	if err != nil {
//		return err
//	}
//	if err := idx.Open(registry); err != nil {
//		return err
//	}
//	refs, err := idx.GetAllServiceReferences("com.example.Store", "(cid=eu-1)")
//
// # Multi-valued properties
//
// A multi-valued property is sorted and filed once per contiguous run of
// its values, so {a,b,c} yields a, a+b, a+b+c, b, b+c and c. Marking the
// property with '#' files it once per value instead. Keys of different
// properties are combined by Cartesian product; keep indexed multi-valued
// properties small.
package multiproperty
