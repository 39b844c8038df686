package client

import (
	"fmt"
	"net/url"
)

// Endpoints constrói as URLs do provider de catálogo a partir da base
// configurada. Centraliza o formato das rotas em um único lugar.
type Endpoints struct {
	Base string // e.g. "http://localhost:8080"
}

// ProductsList monta GET /products?skip=&limit=
func (e Endpoints) ProductsList(skip, limit int) string {
	return fmt.Sprintf("%s/products?skip=%d&limit=%d", e.Base, skip, limit)
}

// ProductsSearch monta GET /products/search?q=&skip=&limit=
// O termo é sempre URL-encoded.
func (e Endpoints) ProductsSearch(query string, skip, limit int) string {
	return fmt.Sprintf("%s/products/search?q=%s&skip=%d&limit=%d",
		e.Base, url.QueryEscape(query), skip, limit)
}

// ProductDetails monta GET /products/{id}
func (e Endpoints) ProductDetails(id string) string {
	return fmt.Sprintf("%s/products/%s", e.Base, url.PathEscape(id))
}

// ProductAdd monta POST /products/add
func (e Endpoints) ProductAdd() string {
	return e.Base + "/products/add"
}

// ProductUpdate monta PUT /products/{id}
func (e Endpoints) ProductUpdate(id string) string {
	return fmt.Sprintf("%s/products/%s", e.Base, url.PathEscape(id))
}

// ProductDelete monta DELETE /products/{id}
func (e Endpoints) ProductDelete(id string) string {
	return fmt.Sprintf("%s/products/%s", e.Base, url.PathEscape(id))
}

// AuthLogin monta POST /auth/login
func (e Endpoints) AuthLogin() string {
	return e.Base + "/auth/login"
}

// AuthRefresh monta POST /auth/refresh
func (e Endpoints) AuthRefresh() string {
	return e.Base + "/auth/refresh"
}
