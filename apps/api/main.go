package main

import (
	_ "net/http/pprof" // registers the /debug/pprof handlers on the default mux
)

func main() {
	startWithDig()
}
