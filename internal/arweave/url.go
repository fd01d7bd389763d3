// Package arweave formats links to files stored on the Arweave permaweb.
package arweave

import "strings"

const DefaultGateway = "https://arweave.net"

// URL returns the gateway URL for a transaction id, or "" when txID is empty.
func URL(gateway, txID string) string {
	txID = strings.Trim(strings.TrimSpace(txID), "/")
	if txID == "" {
		return ""
	}
	if gateway == "" {
		gateway = DefaultGateway
	}
	return strings.TrimRight(gateway, "/") + "/" + txID
}
