// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import "context"

// identityContextKey keys the Identity in a request context. An unexported
// empty struct type cannot collide with keys from other packages.
type identityContextKey struct{}

// WithIdentity stores an Identity in the context. A nil identity returns the
// original context unchanged.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the authenticated Identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok
}
