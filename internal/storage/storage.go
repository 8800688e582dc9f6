// Package storage abstracts the durable client-state store. The storefront
// keeps only opaque serialized records (cart lines, session user, bearer
// token) under fixed, versionless keys, mirroring what the web client kept in
// browser storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value store for client state.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetNX sets the key only if absent, with a TTL. Returns true when the
	// key was set. Used as the checkout in-flight guard.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Key namespace. Fixed and versionless, no migration strategy.
const namespace = "storefront"

// CartKey returns the key holding the serialized cart line list.
func CartKey(sessionID string) string {
	return fmt.Sprintf("%s:cart:%s", namespace, sessionID)
}

// UserKey returns the key holding the serialized user record.
func UserKey(sessionID string) string {
	return fmt.Sprintf("%s:user:%s", namespace, sessionID)
}

// TokenKey returns the key holding the bearer token.
func TokenKey(sessionID string) string {
	return fmt.Sprintf("%s:token:%s", namespace, sessionID)
}

// CheckoutGuardKey returns the key guarding against duplicate submissions.
func CheckoutGuardKey(sessionID string) string {
	return fmt.Sprintf("%s:checkout:%s", namespace, sessionID)
}
