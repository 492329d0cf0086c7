package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	updated := time.Now()

	tag := GenerateETag(id, updated)

	assert.True(t, strings.HasPrefix(tag, `"`), tag)
	assert.True(t, strings.HasSuffix(tag, `"`), tag)

	// Stable for the same inputs, different once the document changes.
	assert.Equal(t, tag, GenerateETag(id, updated))
	assert.NotEqual(t, tag, GenerateETag(id, updated.Add(time.Second)))
	assert.NotEqual(t, tag, GenerateETag(primitive.NewObjectID(), updated))
}
