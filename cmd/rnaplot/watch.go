package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/fsnotify/fsnotify"
	"nhooyr.io/websocket"

	"github.com/rnaplot/rnaplot/pkg/rnaplot"
)

// liveReloadPage is the minimal dev-preview shell: it opens a websocket to
// this process and replaces its embedded SVG whenever a message arrives.
const liveReloadPage = `<!doctype html><meta charset="utf-8">
<style>html,body{margin:0;background:#fafafa}#stage{padding:24px}</style>
<div id="stage">rendering...</div>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => { document.getElementById("stage").innerHTML = ev.data; };
</script>`

// watchAndServe watches f.file for changes, re-rendering on each write. If
// f.serve is set it also runs an HTTP server pushing each new render over
// websocket to any connected browser tab; otherwise it just re-writes
// f.outputs on each change.
func watchAndServe(ctx context.Context, f flags, opts rnaplot.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(f.file); err != nil {
		return fmt.Errorf("watch %q: %w", f.file, err)
	}

	var broadcaster *svgBroadcaster
	if f.serve != "" {
		broadcaster = newSVGBroadcaster()
		server := &http.Server{Addr: f.serve, Handler: broadcaster.handler()}
		go func() {
			log.Printf("rnaplot: serving live preview on http://%s", f.serve)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("rnaplot: serve: %v", err)
			}
		}()
	}

	render := func() {
		structure, sequence, err := readStructureFile(f.file)
		if err != nil {
			log.Printf("rnaplot: %v", err)
			return
		}
		result, err := rnaplot.Render(ctx, structure, sequence, opts)
		if err != nil {
			log.Printf("rnaplot: render: %v", err)
			return
		}
		if err := renderAndWrite(ctx, structure, sequence, opts, f.outputs); err != nil {
			log.Printf("rnaplot: write: %v", err)
		}
		if broadcaster != nil {
			broadcaster.publish(result.SVG)
		}
	}

	render()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				render()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("rnaplot: watch error: %v", err)
		}
	}
}

// svgBroadcaster fans the latest rendered SVG out to every connected
// websocket client, and serves it fresh to any new connection.
type svgBroadcaster struct {
	mu      sync.Mutex
	latest  string
	clients map[*websocket.Conn]struct{}
}

func newSVGBroadcaster() *svgBroadcaster {
	return &svgBroadcaster{clients: make(map[*websocket.Conn]struct{})}
}

func (b *svgBroadcaster) publish(svg string) {
	b.mu.Lock()
	b.latest = svg
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		_ = c.Write(context.Background(), websocket.MessageText, []byte(svg))
	}
}

func (b *svgBroadcaster) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(liveReloadPage))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		b.mu.Lock()
		b.clients[c] = struct{}{}
		latest := b.latest
		b.mu.Unlock()

		if latest != "" {
			_ = c.Write(r.Context(), websocket.MessageText, []byte(latest))
		}

		defer func() {
			b.mu.Lock()
			delete(b.clients, c)
			b.mu.Unlock()
			_ = c.Close(websocket.StatusNormalClosure, "")
		}()

		// Block until the client disconnects; this handler has nothing
		// more to read, it only ever writes.
		for {
			if _, _, err := c.Read(r.Context()); err != nil {
				return
			}
		}
	})
	return mux
}
