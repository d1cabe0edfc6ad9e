// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.2.0"

// Milestones:
// 0.2.0 - Config hot reload, Prometheus frame metrics, snapshot and texture export
// 0.1.0 - Initial release: Kepler orbit of 333005 Haberle, procedural textures, terminal orrery
