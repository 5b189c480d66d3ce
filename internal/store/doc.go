package store

// The sqlite driver is github.com/mattn/go-sqlite3 (cgo), registered
// under the "sqlite3" driver name that Open dials.
