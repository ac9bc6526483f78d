package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainParamSet = "hwparam/paramset/v1"
	DomainAttr     = "hwparam/attr/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AttrHash computes a content hash of a single attribute tree.
// Structurally equal attributes always hash equal.
func AttrHash(a Attribute) (string, error) {
	canonical, err := MarshalCanonical(a)
	if err != nil {
		return "", fmt.Errorf("AttrHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAttr, canonical), nil
}

// ParamSetID computes the content-addressed ID of a named, encoded
// parameter set. The ID is stable across runs given the same inputs.
func ParamSetID(name string, params DictAttr) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"name":   name,
		"params": params,
	})
	if err != nil {
		return "", fmt.Errorf("ParamSetID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParamSet, canonical), nil
}

// MustParamSetID is like ParamSetID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParamSetID(name string, params DictAttr) string {
	id, err := ParamSetID(name, params)
	if err != nil {
		panic(err)
	}
	return id
}
