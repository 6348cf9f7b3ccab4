package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Size int `yaml:"size" validate:"min=3,max=10"`
}

type outer struct {
	Board inner  `yaml:"board"`
	Level string `json:"level" validate:"oneof=debug info"`
}

func TestDescribeUsesTagNames(t *testing.T) {
	err := GetValidator().Struct(outer{Board: inner{Size: 11}, Level: "loud"})
	require.Error(t, err)
	assert.Equal(t, "board.size fails max=10; level fails oneof=debug info", Describe(err))

	assert.NoError(t, GetValidator().Struct(outer{Board: inner{Size: 3}, Level: "info"}))
	assert.Equal(t, "plain", Describe(errors.New("plain")))
}
