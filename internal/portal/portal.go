// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

// =============================================================================
// SERVICE INTERFACES
// =============================================================================

// User is the signed-in portal user as the engine sees them. Permissions
// are route-prefix grants ("reports", "pharmacy/inventory") checked when
// the navigation catalog is built.
type User struct {
	ID          string
	FullName    string
	Roles       []string
	Permissions []string
}

// HasPermission reports whether the user holds a permission exactly
// matching perm.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Auth exposes the host application's authentication state.
//
// Subscribe registers a callback invoked whenever the login state flips.
// The returned cancel function removes the subscription; it is safe to
// call more than once.
type Auth interface {
	IsLoggedIn() bool
	CurrentUser() *User
	AccessToken() string
	Subscribe(fn func(loggedIn bool)) (cancel func())
}

// Theme exposes the host application's theme state.
type Theme interface {
	IsDark() bool
	Toggle()
}

// Navigator exposes the host application's router. NavigateByURL returns
// an error when the target does not exist or the user may not open it.
type Navigator interface {
	CurrentURL() string
	NavigateByURL(url string) error
}
