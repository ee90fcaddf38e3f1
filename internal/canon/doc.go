// Package canon produces canonical JSON and domain-separated digests.
//
// Canonical output follows RFC 8785 for the value kinds a manifest can hold:
// strings (NFC normalised, no HTML escaping), integers, booleans, arrays and
// objects with keys ordered by UTF-16 code units. Floats and null are
// rejected.
package canon
