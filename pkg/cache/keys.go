package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RouteKeyOpts are the routing parameters that affect the output and must
// therefore be part of the cache key.
type RouteKeyOpts struct {
	SearchDepth   int   `json:"search_depth"`
	InitialLayout []int `json:"initial_layout,omitempty"`
}

// RouteKey builds the cache key for a routing run. The key covers
// everything the router's output depends on: the serialized device
// specification, the serialized input program, and the routing parameters.
// Any byte-level change to the inputs yields a different key.
func RouteKey(deviceSpec, program []byte, opts RouteKeyOpts) string {
	return hashKey("route", Hash(deviceSpec), Hash(program), opts)
}

// RenderKey builds the cache key for a rendered coupling-graph diagram,
// covering the device specification and the rendering options fingerprint.
func RenderKey(deviceSpec []byte, opts string) string {
	return hashKey("render", Hash(deviceSpec), opts)
}
