// Package services implements the driving ports: indexing uploads,
// answering retrieval queries and managing the document library.
// Services orchestrate driven ports and hold no persistent state of
// their own.
package services
