// Development stand-in for the upstream monitoring server: serves the
// socket endpoint and emits a random-walk count stream plus occasional
// alerts, so the gateway pipeline can be exercised without real cameras.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", ":5050", "listen address")
	cameras := flag.String("cameras", "cam-1,cam-2", "comma-separated camera ids")
	interval := flag.Duration("interval", 2*time.Second, "sample interval")
	flag.Parse()

	ids := strings.Split(*cameras, ",")

	http.HandleFunc("/socket", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("client connected: %s", r.RemoteAddr)

		// Drain inbound commands (join-entrance etc); the simulator
		// broadcasts to everyone regardless.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		counts := make(map[string]int)
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		for range ticker.C {
			for _, id := range ids {
				counts[id] += rand.Intn(11) - 4
				if counts[id] < 0 {
					counts[id] = 0
				}
				frame := envelope{Event: "countUpdate", Data: map[string]interface{}{
					"camera_id": id,
					"count":     counts[id],
				}}
				if err := conn.WriteJSON(frame); err != nil {
					log.Printf("client gone: %v", err)
					return
				}
			}

			if rand.Intn(10) == 0 {
				severities := []string{"critical", "high", "medium", "low"}
				frame := envelope{Event: "globalAlert", Data: map[string]interface{}{
					"severity": severities[rand.Intn(len(severities))],
					"title":    "Simulated crowd alert",
					"message":  "Density rising at main entrance",
				}}
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
		}
	})

	log.Printf("simulator listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
