// Package server exposes asset resolution over HTTP and WebSocket and
// serves the assets themselves.
//
// Routes:
//
//	GET /resolve?source=application.js&digest=true   resolve one source
//	GET /ws                                          streaming resolve
//	GET /metrics                                     Prometheus metrics
//	GET <prefix>/*                                   managed asset bodies
//	GET /*                                           public directory
//
// A WebSocket client sends one JSON object per text message:
//
//	{"id": 1, "source": "application", "kind": "javascript", "options": {"digest": true}}
//
// and receives one reply per request, in order:
//
//	{"id": 1, "path": "/assets/application-1f0e3dad.js", "paths": ["/assets/application-1f0e3dad.js"]}
//
// Digest-path hits are served with an immutable Cache-Control header.
package server
