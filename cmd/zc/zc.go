package main

// The zc container exists so that most of the "main" functionality can be delegated to
// support functions and keep the flow of main() nice and clean.
type zc struct {
	cfg *config
}

func newZC() *zc {
	return &zc{cfg: newConfig()}
}
