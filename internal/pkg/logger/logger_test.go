package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestConfigure_JSONOutputWithService(t *testing.T) {
	var buf bytes.Buffer
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	lgr := Configure(Config{Level: InfoLevel, Output: &buf, Service: "importer"})
	lgr.Info().Str("batch", "b1").Msg("import started")
	Debug().Msg("suppressed below info")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "importer", entry["service"])
	assert.Equal(t, "b1", entry["batch"])
	assert.Equal(t, "import started", entry["message"])
}
