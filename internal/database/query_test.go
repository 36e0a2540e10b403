package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere(t *testing.T) {
	w := &Where{}
	assert.Equal(t, "", w.String())

	w.Add("store_id = ?", "s1")
	w.Add("(name ILIKE ? OR code ILIKE ?)", "%kim%")
	assert.Equal(t, " WHERE store_id = $1 AND (name ILIKE $2 OR code ILIKE $2)", w.String())
	assert.Equal(t, []interface{}{"s1", "%kim%"}, w.Args())
}

func TestLimit(t *testing.T) {
	assert.Equal(t, " LIMIT 200", Limit(0))
	assert.Equal(t, " LIMIT 50", Limit(50))
	assert.Equal(t, " LIMIT 200", Limit(5000))
}
