// Package ir provides the attribute, type, and location model that hwparam
// encodes host values into.
//
// This package contains the IR collaborator only. All other internal packages
// import ir; ir imports nothing internal. This keeps the model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Attributes, types, and locations are immutable once constructed
//   - NO float attributes - widths are always explicit integers
//   - DictAttr keys are unique and kept in RFC 8785 (UTF-16) order
//   - Canonical JSON is the only serialization used for identity hashing
package ir
