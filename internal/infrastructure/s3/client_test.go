package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_URLAndKeyRoundTrip(t *testing.T) {
	s := NewStore(nil, "furnibayt", "https://furnibayt.s3.us-east-1.amazonaws.com/")

	url := s.URL("products/abc.png")
	assert.Equal(t, "https://furnibayt.s3.us-east-1.amazonaws.com/products/abc.png", url)
	assert.Equal(t, "products/abc.png", s.Key(url))
}

func TestStore_KeyPassesThroughBareKeys(t *testing.T) {
	s := NewStore(nil, "furnibayt", "http://localhost:4566/furnibayt")
	assert.Equal(t, "products/abc.png", s.Key("products/abc.png"))
}
