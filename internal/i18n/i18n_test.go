package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogsHaveSameKeys(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tr := c.messages["tr"]
	en := c.messages["en"]
	require.NotEmpty(t, tr)
	for k := range tr {
		assert.Contains(t, en, k)
	}
	assert.Equal(t, c.Len("tr"), c.Len("en"))
}

func TestLocalizer_T(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, "Kayıt bulunamadı", c.Localizer("tr").T("error.not_found"))
	assert.Equal(t, "Record not found", c.Localizer("en").T("error.not_found"))
	assert.Equal(t, "Kayıt bulunamadı", c.Localizer("de").T("error.not_found"))
	assert.Equal(t, "email is required", c.Localizer("en").T("validation.required", "field", "email"))
	assert.Equal(t, "no.such.key", c.Localizer("en").T("no.such.key"))
}

func TestLocalizer_FallsBackToDefaultLanguage(t *testing.T) {
	c, err := Load(fstest.MapFS{
		"tr.json": {Data: []byte(`{"greeting": {"hello": "Merhaba"}, "only_tr": "Sadece"}`)},
		"en.json": {Data: []byte(`{"greeting": {"hello": "Hello"}}`)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", c.Localizer("en").T("greeting.hello"))
	assert.Equal(t, "Sadece", c.Localizer("en").T("only_tr"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(fstest.MapFS{"tr.json": {Data: []byte(`{}`)}})
	assert.ErrorContains(t, err, "en.json")

	_, err = Load(fstest.MapFS{
		"tr.json": {Data: []byte(`{`)},
		"en.json": {Data: []byte(`{}`)},
	})
	assert.ErrorContains(t, err, "parse translation file tr.json")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "tr", DetectLanguage(""))
	assert.Equal(t, "tr", DetectLanguage("tr-TR,tr;q=0.9,en-US;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("de-DE,en;q=0.5"))
	assert.Equal(t, "tr", DetectLanguage("ja"))
	assert.Equal(t, "tr", DetectLanguage(";;;"))
}
