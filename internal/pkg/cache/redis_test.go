package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	c := NewRedisCache("localhost:6379", "storefront")
	assert.Equal(t, "storefront:catalog:http://x/products.json",
		c.GenerateKey("catalog", "http://x/products.json"))
}
