package arweave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		txID    string
		want    string
	}{
		{"default gateway", "", "abc123", "https://arweave.net/abc123"},
		{"custom gateway", "https://ar-io.net", "abc123", "https://ar-io.net/abc123"},
		{"trailing slash", "https://arweave.net/", "abc123", "https://arweave.net/abc123"},
		{"padded id", "https://arweave.net", " /abc123 ", "https://arweave.net/abc123"},
		{"empty id", "https://arweave.net", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URL(tt.gateway, tt.txID))
		})
	}
}
