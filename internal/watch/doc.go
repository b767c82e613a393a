// Package watch provides file-watching capabilities for toon's
// watch mode, re-encoding inputs whenever their content changes.
package watch
