// Package cli is the interactive door-scanner client.
//
// App wires configuration, the local store, the roster services and an
// interactive REPL that keeps working when the server is unreachable. A
// background watcher pings the server and flips the app between online and
// offline mode; going online drains the sync queue.
//
// The REPL is started via App.Root(ctx), which blocks until the operator
// exits. See runREPL for the command list.
package cli
