// Package value defines the host values that hwparam encodes: a closed set
// of variants (Null, Bool, Int, String, List, Map, AppID, Attr, TypeHandle,
// Signal, Opaque) plus Record, which admits any user type implementing
// FieldView.
//
// Values are immutable once built. Map preserves insertion order and rejects
// duplicate keys.
package value
