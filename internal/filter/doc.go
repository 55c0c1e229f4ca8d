// Package filter provides the narrow structural recognition the indices
// need, without a general LDAP filter parser.
//
// ParseConjunction tokenizes conjunctions of equality clauses. ScanAdapter
// and ScanAspect match the two fixed shapes generated by aspect and
// adapter chaining against their literal skeletons and extract the numeric
// fields. Every recognizer declines (ok == false) instead of failing on
// input it does not understand.
package filter
