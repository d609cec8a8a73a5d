// cmd/compliance-manager/main_test.go
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntParam(t *testing.T) {
	assert.Equal(t, 40, intParam("40"))
	assert.Equal(t, 0, intParam(""))
	assert.Equal(t, 0, intParam("not-a-number"))
	assert.Equal(t, 0, intParam("-5"))
}
