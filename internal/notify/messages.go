package notify

// Catalog resolve chaves de mensagem para o texto localizado, com fallback
// em inglês quando a tradução não estiver disponível e, em último caso, a
// própria chave.
type Catalog struct {
	locale map[string]string
}

// fallbackEN são as mensagens de último recurso, em inglês.
var fallbackEN = map[string]string{
	"fetch_products_error":  "Error fetching products",
	"add_success":           "Product added successfully",
	"add_error":             "Error adding product",
	"update_success":        "Product updated successfully",
	"update_error":          "Error updating product",
	"delete_success":        "Product deleted successfully",
	"delete_error":          "Error deleting product",
	"dashboard_fetch_error": "Error loading dashboard data",
	"login_success":         "Logged in successfully",
	"login_error":           "Invalid credentials",
}

// ptBR é o catálogo padrão do console.
var ptBR = map[string]string{
	"fetch_products_error":  "Erro ao buscar produtos",
	"add_success":           "Produto adicionado com sucesso",
	"add_error":             "Erro ao adicionar produto",
	"update_success":        "Produto atualizado com sucesso",
	"update_error":          "Erro ao atualizar produto",
	"delete_success":        "Produto excluído com sucesso",
	"delete_error":          "Erro ao excluir produto",
	"dashboard_fetch_error": "Erro ao carregar dados do dashboard",
	"login_success":         "Login realizado com sucesso",
	"login_error":           "Credenciais inválidas",
}

// NewCatalog cria o catálogo com o locale padrão (pt-BR).
func NewCatalog() *Catalog {
	return &Catalog{locale: ptBR}
}

// NewCatalogWith cria um catálogo com um locale customizado (usado em testes
// e para trocar de idioma).
func NewCatalogWith(locale map[string]string) *Catalog {
	return &Catalog{locale: locale}
}

// T resolve uma chave: locale ativo -> fallback inglês -> a própria chave.
func (c *Catalog) T(key string) string {
	if c != nil && c.locale != nil {
		if msg, ok := c.locale[key]; ok {
			return msg
		}
	}
	if msg, ok := fallbackEN[key]; ok {
		return msg
	}
	return key
}
