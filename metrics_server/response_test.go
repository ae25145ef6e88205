package metrics_server

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResponse(t *testing.T) {
	resp := BuildResponse([]byte("hello"))

	assert.Equal(t,
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Type: text/plain\r\nConnection: close\r\n\r\nhello",
		string(resp))
}

func TestBuildResponse_ByteLength(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "ascii", body: "# HELP x y\n# TYPE x gauge"},
		{name: "multi-byte path", body: `process_resident_memory_bytes{path="/Applications/Café.app/日本"} 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(BuildResponse([]byte(tt.body)))), nil)
			require.NoError(t, err)
			defer parsed.Body.Close()

			assert.Equal(t, http.StatusOK, parsed.StatusCode)
			assert.Equal(t, int64(len(tt.body)), parsed.ContentLength)
			assert.Equal(t, "text/plain", parsed.Header.Get("Content-Type"))
			assert.True(t, parsed.Close)

			body, err := io.ReadAll(parsed.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}
