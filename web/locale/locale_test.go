package locale

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator(t *testing.T) {
	require.NoError(t, InitLocalizer(os.DirFS("..")))

	en := Translator("en-US")
	assert.Equal(t, "3 orders deleted", en("pages.orders.purged", "Count==3"))
	assert.Equal(t, "Invalid data", en("errors.validation"))

	pt := Translator("fr-FR")
	assert.Equal(t, "Dados inválidos", pt("errors.validation"), "unknown languages fall back to pt-BR")

	assert.Equal(t, "pages.missing", en("pages.missing"))
}

func TestCreateTemplateData(t *testing.T) {
	data := createTemplateData([]string{"Number==123", "Status==ready", "broken"})
	assert.Equal(t, map[string]any{"Number": "123", "Status": "ready"}, data)
}
