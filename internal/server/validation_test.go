package server

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hhmmProbe struct {
	Time string `binding:"required,hhmm"`
}

type phoneProbe struct {
	Phone string `binding:"omitempty,phone_th"`
}

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	assert.NoError(t, v.Struct(hhmmProbe{Time: "18:00"}))
	assert.NoError(t, v.Struct(hhmmProbe{Time: "00:00"}))
	assert.Error(t, v.Struct(hhmmProbe{Time: "24:00"}))
	assert.Error(t, v.Struct(hhmmProbe{Time: "9:00"}))
	assert.Error(t, v.Struct(hhmmProbe{Time: "18:60"}))

	assert.NoError(t, v.Struct(phoneProbe{Phone: "0812345678"}))
	assert.NoError(t, v.Struct(phoneProbe{Phone: "021234567"}))
	assert.NoError(t, v.Struct(phoneProbe{}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "12345"}))
	assert.Error(t, v.Struct(phoneProbe{Phone: "+66812345678"}))
}
