// Package liburing holds the cgo bindings of the liburing io_uring library.
//
// Run go generate to rebuild the wrapper archive and the cgo glue file after
// the installed liburing changes:
//
//	go generate ./liburing
//
// The generated zbindings_cgo.go links the package against
// out/libwrapper_extern.a and the system liburing.
package liburing

//go:generate go run github.com/wippyai/uringgen/cmd/uringgen generate --out-dir=out --source-root=. --allow-function=^_*io_uring_
