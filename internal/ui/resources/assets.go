// Package resources serves the dashboard's static assets, embedded in the
// binary for release builds and read from disk under the dev build tag.
package resources

// StaticDirectoryPath is where the static assets live relative to the
// repository root.
const StaticDirectoryPath = "internal/ui/resources/static"
