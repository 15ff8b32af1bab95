// Package api hosts the HTTP server, middleware, and handlers. Notable routes:
//   - GET /landing-{slug}/{username}/{id}: social-card document for crawlers,
//     redirect to the UI for humans.
//   - GET /api/test-data, POST /api/generate-url, GET /api/preview-data and
//     POST /api/pre-warm back the external testing UI.
//   - GET /healthz, /readyz and /metrics for probes and Prometheus scraping.
package api
