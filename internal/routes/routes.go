// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package routes

import (
	"strings"

	"github.com/jeranaias/hisassist/internal/normalize"
)

// =============================================================================
// ROUTE TREE
// =============================================================================

// Route is one node of the host application's static route tree.
type Route struct {
	// Path is the node's own segment ("reports", "bed-usage"). A path of
	// "*" or "**" marks a wildcard entry.
	Path string

	// Title is the display name. Untitled nodes are structural only and
	// never appear in the catalog.
	Title string

	// Permission names the grant required to open this screen. Empty
	// means no requirement; such nodes are included only when their
	// bare path is on the public whitelist.
	Permission string

	// Redirect marks pure redirect entries, which are skipped.
	Redirect bool

	// Keywords are synonym terms attached to the node for fuzzy lookup.
	Keywords []string

	// Description is optional help text surfaced in tool schemas.
	Description string

	Children []*Route
}

// Info is one navigable screen as exposed to the classifier, the tool
// executor, and the model's tool schema.
type Info struct {
	Title       string
	FullURL     string
	Key         string
	Keywords    []string
	Description string
}

// =============================================================================
// TREE WALK
// =============================================================================

// publicPaths are bare paths open to every signed-in user regardless of
// permission grants.
var publicPaths = map[string]bool{
	"home":     true,
	"settings": true,
	"profile":  true,
}

// isWildcard reports whether a path segment is a router wildcard.
func isWildcard(path string) bool {
	return strings.Contains(path, "*")
}

// permitted reports whether a required permission is satisfied by the
// user's grants. A grant matches when it prefixes the requirement at a
// segment boundary, so "reports" covers "reports/bed-usage".
func permitted(required string, grants []string) bool {
	for _, g := range grants {
		if g == "" {
			continue
		}
		if required == g || strings.HasPrefix(required, g+"/") {
			return true
		}
	}
	return false
}

// collect walks the tree depth-first, appending every includable node.
// appRoot is the leading segment shared by all screens ("app"); segments
// carries the joined path so far.
func collect(node *Route, appRoot string, segments []string, grants []string, out *[]Info) {
	if node == nil || node.Redirect || isWildcard(node.Path) {
		return
	}

	path := segments
	if node.Path != "" {
		path = append(append([]string(nil), segments...), node.Path)
	}

	if node.Title != "" && includable(node, path, appRoot, grants) {
		key := strings.Join(path, "/")
		key = strings.TrimPrefix(key, appRoot+"/")
		*out = append(*out, Info{
			Title:       node.Title,
			FullURL:     "/" + strings.Join(path, "/"),
			Key:         key,
			Keywords:    node.Keywords,
			Description: node.Description,
		})
	}

	for _, child := range node.Children {
		collect(child, appRoot, path, grants, out)
	}
}

// includable applies the permission rule for a titled node.
func includable(node *Route, path []string, appRoot string, grants []string) bool {
	if node.Permission != "" {
		return permitted(node.Permission, grants)
	}
	// No requirement declared: the app root itself and whitelisted
	// subtrees are open to every signed-in user.
	if node.Path == appRoot && len(path) == 1 {
		return true
	}
	if len(path) > 1 && path[0] == appRoot && publicPaths[path[1]] {
		return true
	}
	return publicPaths[node.Path]
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// matches reports whether a folded term occurs in any searchable field
// of the route.
func matches(r Info, folded string) bool {
	if folded == "" {
		return false
	}
	if strings.Contains(r.Key, folded) || strings.Contains(r.FullURL, folded) {
		return true
	}
	if strings.Contains(normalize.Fold(strings.ToLower(r.Title)), folded) {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(normalize.Fold(strings.ToLower(kw)), folded) {
			return true
		}
	}
	return false
}
