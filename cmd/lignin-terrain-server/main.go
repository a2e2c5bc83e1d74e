// Command lignin-terrain-server evaluates a scene once at startup and then
// streams its polygonized blocks to any connected viewer over a websocket,
// standing in for the mesh/material/scene-graph consumer a real host engine
// would provide.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/websocket"

	"github.com/chazu/lignin-terrain/pkg/engine"
	"github.com/chazu/lignin-terrain/pkg/kernel"
	"github.com/chazu/lignin-terrain/pkg/kernel/sdfx"
	"github.com/chazu/lignin-terrain/pkg/tessellate"
)

// blockMessage is one polygonized block streamed to a connected viewer.
type blockMessage struct {
	PartName string    `json:"partName"`
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect: this is a local development viewer, not a
	// service exposed to untrusted networks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	scenePath := flag.String("scene", "", "path to a .lignin scene file")
	addr := flag.String("addr", ":8765", "address to listen on")
	flag.Parse()

	if *scenePath == "" {
		log.Fatal("lignin-terrain-server: -scene is required")
	}

	meshes, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("lignin-terrain-server: %v", err)
	}
	log.Printf("lignin-terrain-server: loaded %d block(s) from %s", len(meshes), *scenePath)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveViewer(w, r, meshes)
	})

	log.Printf("lignin-terrain-server: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("lignin-terrain-server: %v", err)
	}
}

func loadScene(path string) ([]*kernel.Mesh, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine()
	g, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, err
	}
	for _, e := range evalErrs {
		log.Printf("lignin-terrain-server: scene error at line %d: %s", e.Line, e.Message)
	}

	k := sdfx.New()
	return tessellate.Tessellate(g, k)
}

func serveViewer(w http.ResponseWriter, r *http.Request, meshes []*kernel.Mesh) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("lignin-terrain-server: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for _, m := range meshes {
		msg := blockMessage{
			PartName: m.PartName,
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("lignin-terrain-server: marshal block %q: %v", m.PartName, err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("lignin-terrain-server: write block %q: %v", m.PartName, err)
			return
		}
	}
}
