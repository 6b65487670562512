package main

import (
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mossgate/delver-engine/internal/dungeon"
	"github.com/mossgate/delver-engine/internal/geomorph"
	"github.com/mossgate/delver-engine/internal/logging"
)

func main() {
	log := logging.New()

	settings := dungeon.DefaultSettings()
	if v := os.Getenv("GRID_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid GRID_SIZE %q", v)
		}
		settings.GridSize = n
	}

	catalog := geomorph.NewCatalog(geomorph.BuiltIn(), rand.New(rand.NewSource(time.Now().UnixNano())))
	session := NewSession(settings, catalog, log)

	// First map exists before any client connects.
	session.NewDungeon(0)

	mux := http.NewServeMux()
	mux.HandleFunc("/", session.handleSnapshot)
	mux.HandleFunc("/stream", session.handleStream)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("server: %v", err)
	}
}
