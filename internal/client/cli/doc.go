// Package cli provides the interactive sealdrop command-line client.
//
// It wires configuration, the ledger gateway client, the crypto and listing
// services, and an interactive REPL. Typical flow: prompt for the signing
// key, start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Unlock / Lock (signing key held only in memory)
//   - Send an encrypted file to up to ten recipients
//   - Inbox / Outbox listings with cached reads
//   - Fetch and decrypt a file into the download directory
//   - Watch the ledger for newly addressed files
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
