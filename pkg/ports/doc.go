/*
Package ports defines the driven ports (interfaces) used by the typeguard
services.

These interfaces decouple checking from where signatures come from and where
reports go, so the HTTP, MCP and CLI front ends can share one Checker with
different backends.

# Key Interfaces

  - Checker: validates standalone values and recorded calls.
  - SignatureLoader: serves raw signature documents by name (memory or a directory).
  - ReportSink: persists violation reports (memory, files or Redis).
*/
package ports
