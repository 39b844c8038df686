package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/notify"
)

// TestCatalog_LocaleHit verifica a resolução pelo locale ativo.
func TestCatalog_LocaleHit(t *testing.T) {
	c := notify.NewCatalog()
	assert.Equal(t, "Produto adicionado com sucesso", c.T("add_success"))
}

// TestCatalog_FallbackEnglish verifica o fallback em inglês quando o locale
// não possui a chave.
func TestCatalog_FallbackEnglish(t *testing.T) {
	c := notify.NewCatalogWith(map[string]string{})
	assert.Equal(t, "Product added successfully", c.T("add_success"))
}

// TestCatalog_UnknownKey devolve a própria chave quando nada resolve.
func TestCatalog_UnknownKey(t *testing.T) {
	c := notify.NewCatalog()
	assert.Equal(t, "no_such_key", c.T("no_such_key"))
}
