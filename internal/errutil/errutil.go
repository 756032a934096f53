// Package errutil collects the two error-handling idioms the rest of the
// module uses: deferred, wrapped annotation for returned errors (mirroring
// lib/urlenc/urlenc.go's `defer xdefer.Errorf(&err, ...)`), and a hard
// Assert for internal invariant violations that must never be recovered.
package errutil

import (
	"fmt"

	"golang.org/x/xerrors"
	"oss.terrastruct.com/util-go/xdefer"
)

// Errorf annotates *err with a wrapped, framed message if *err is non-nil
// when the deferred call runs. Use as:
//
//	func Foo() (err error) {
//		defer errutil.Errorf(&err, "foo failed")
//		...
//	}
func Errorf(err *error, format string, args ...interface{}) {
	xdefer.Errorf(err, format, args...)
}

// Wrap wraps err with a framed message using golang.org/x/xerrors, for
// call sites that want to annotate immediately rather than via defer.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf(format+": %w", append(args, err)...)
}

// Assert panics with a descriptive message if cond is false. Used only for
// internal invariant violations (positive N, symmetric pair map, every
// nucleotide placed, loop perimeter closure) — never for input validation,
// which returns an error instead.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("rnaplot: invariant violated: "+format, args...))
	}
}
