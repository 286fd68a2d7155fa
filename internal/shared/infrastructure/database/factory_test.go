package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLitePathFromURL(t *testing.T) {
	assert.Equal(t, "", SQLitePathFromURL(""))
	assert.Equal(t, "/var/lib/jobflow/shop.db", SQLitePathFromURL("sqlite:///var/lib/jobflow/shop.db"))
	assert.Equal(t, "./local.db", SQLitePathFromURL("./local.db"))
	assert.Equal(t, "", SQLitePathFromURL("postgres://jobflow@localhost/jobflow"))
}
