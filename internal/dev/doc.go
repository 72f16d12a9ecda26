// Package dev provides the routegen development server.
//
// The server watches the pages tree, regenerates the route table on every
// change and pushes a reload to connected browsers.
//
// # Architecture
//
//   - Watcher: monitors the pages root with fsnotify
//   - Coordinator: serializes passes; changes during a pass collapse into one follow-up pass
//   - ReloadServer: notifies browsers via WebSocket
//   - Server: wires the above to the compiler and serves the dev endpoints
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config:  cfg,
//	    Metrics: metrics.New(),
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
//	/_routegen/reload     WebSocket reload channel
//	/_routegen/status     JSON summary of the last pass
//	/_routegen/client.js  browser client script
//	/metrics              Prometheus metrics
//
// # Reload Protocol
//
// Messages are JSON-encoded:
//
//	{"type": "reload"}                             // route table changed
//	{"type": "error", "code": "R001", "error": "..."} // shows error overlay
//	{"type": "clear"}                              // clears error overlay
package dev
