package props

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestInt(t *testing.T) {
	p := decode(t, `{"max_level": 5, "students_count": "120", "credit_unit": 2.0, "bad": "three", "nothing": null, "blank": " "}`)

	assert.Equal(t, 5, Int(p, "max_level", 4))
	assert.Equal(t, 120, Int(p, "students_count", 0))
	assert.Equal(t, 2, Int(p, "credit_unit", 3))
	assert.Equal(t, 3, Int(p, "bad", 3))
	assert.Equal(t, 3, Int(p, "nothing", 3))
	assert.Equal(t, 3, Int(p, "blank", 3))
	assert.Equal(t, 4, Int(p, "missing", 4))
	assert.Equal(t, 4, Int(nil, "missing", 4))
}

func TestString(t *testing.T) {
	p := decode(t, `{"course_code": " csc101 ", "code": 42, "empty": "", "nothing": null}`)

	assert.Equal(t, "csc101", String(p, "course_code", "N/A"))
	assert.Equal(t, "42", String(p, "code", ""))
	assert.Equal(t, "N/A", String(p, "empty", "N/A"))
	assert.Equal(t, "N/A", String(p, "nothing", "N/A"))
	assert.Equal(t, "N/A", String(p, "missing", "N/A"))
}

func TestHas(t *testing.T) {
	p := decode(t, `{"a": 0, "b": null, "c": "  "}`)

	assert.True(t, Has(p, "a"))
	assert.False(t, Has(p, "b"))
	assert.False(t, Has(p, "c"))
	assert.False(t, Has(p, "d"))
}
