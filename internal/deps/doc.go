// Package deps reports whether the external binaries tubecast drives are
// installed and executable.
package deps
