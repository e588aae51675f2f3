package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
)

func mustCodec(t *testing.T, ft domain.FieldType) form.Codec {
	t.Helper()
	c, err := form.CodecFor(ft)
	require.NoError(t, err)
	return c
}

func TestCodecFor_EveryTypeHasCodec(t *testing.T) {
	for _, ft := range domain.FieldTypes {
		_, err := form.CodecFor(ft)
		assert.NoError(t, err, ft)
	}
}

func TestCodecFor_Unknown(t *testing.T) {
	_, err := form.CodecFor("slider")
	assert.ErrorIs(t, err, form.ErrUnknownType)
}

func TestNumberCodec(t *testing.T) {
	c := mustCodec(t, domain.FieldNumber)

	v, err := c.Parse(" 120 ", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(120), v)
	assert.Equal(t, "120", c.Format(v))
	assert.Equal(t, "1.5", c.Format(1.5))
	assert.Equal(t, "7", c.Format(7))

	_, err = c.Parse("lots", nil)
	assert.ErrorIs(t, err, form.ErrInvalidValue)

	v, err = c.Parse("", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCheckboxCodec(t *testing.T) {
	c := mustCodec(t, domain.FieldCheckbox)

	for raw, want := range map[string]bool{"true": true, "TRUE": true, "1": true, "false": false, "": false} {
		v, err := c.Parse(raw, nil)
		require.NoError(t, err, raw)
		assert.Equal(t, want, v, raw)
	}
	_, err := c.Parse("maybe", nil)
	assert.ErrorIs(t, err, form.ErrInvalidValue)

	assert.Equal(t, "true", c.Format(true))
	assert.Equal(t, "false", c.Format(false))
	assert.Equal(t, "false", c.Format(nil))
}

func TestChoiceCodec_RestrictsToOptions(t *testing.T) {
	for _, ft := range []domain.FieldType{domain.FieldRadio, domain.FieldSelect} {
		c := mustCodec(t, ft)
		opts := []string{"casual", "hardcore"}

		v, err := c.Parse("hardcore", opts)
		require.NoError(t, err)
		assert.Equal(t, "hardcore", v)

		_, err = c.Parse("speedrun", opts)
		assert.ErrorIs(t, err, form.ErrInvalidValue)
	}
}

func TestDateCodec(t *testing.T) {
	c := mustCodec(t, domain.FieldDate)

	v, err := c.Parse("2024-03-10", nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", v)

	_, err = c.Parse("10/03/2024", nil)
	assert.ErrorIs(t, err, form.ErrInvalidValue)
}

func TestInferTypeAndFormat(t *testing.T) {
	assert.Equal(t, domain.FieldCheckbox, form.InferType(true))
	assert.Equal(t, domain.FieldNumber, form.InferType(float64(3)))
	assert.Equal(t, domain.FieldNumber, form.InferType(3))
	assert.Equal(t, domain.FieldText, form.InferType("Taro"))

	assert.Equal(t, "120", form.Format("unknown", 120))
	assert.Equal(t, "true", form.Format(domain.FieldCheckbox, true))
}

func TestParseType(t *testing.T) {
	ft, ok := form.ParseType(" Select ")
	assert.True(t, ok)
	assert.Equal(t, domain.FieldSelect, ft)

	_, ok = form.ParseType("color")
	assert.False(t, ok)
}
