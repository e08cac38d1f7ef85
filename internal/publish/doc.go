// Package publish commits the regenerated channel feeds into a git working
// tree and pushes them, so a static host serving the repository picks up the
// new documents.
package publish
