package main

import "github.com/thereayou/ephroom/internal/server"

func main() {
	srv := server.NewServer()
	defer srv.Stop()

	srv.Run()
}
