package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportCacheWithoutRedis(t *testing.T) {
	Close()
	c := NewExportCache(time.Minute)

	c.Set(context.Background(), "export:png:k", []byte("data"))
	data, ok := c.Get(context.Background(), "export:png:k")

	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Nil(t, GetClient())
}

func TestNilExportCache(t *testing.T) {
	var c *ExportCache
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	c.Set(context.Background(), "k", nil)
}

func TestInitUnreachable(t *testing.T) {
	err := Init("127.0.0.1:1", "", 0)
	assert.Error(t, err)
	assert.Nil(t, GetClient(), "failed init degrades to no cache")
}
