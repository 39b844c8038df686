package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/dashboard"
	"backoffice/internal/domain"
)

// TestCompute_Aggregates verifica os agregados sobre uma amostra conhecida.
func TestCompute_Aggregates(t *testing.T) {
	page := domain.ProductPage{
		Total: 42, // total da coleção, maior que a amostra
		Products: []domain.Product{
			{ID: "a", Title: "Abajur", Brand: "Lumina", Category: "iluminacao", Price: 100, Stock: 10, Rating: 4},
			{ID: "b", Title: "Mesa", Brand: "Casa", Category: "moveis", Price: 200, Stock: 0, Rating: 5},
			{ID: "c", Title: "Cadeira", Brand: "Casa", Category: "moveis", Price: 60, Stock: 2, Rating: 3},
		},
	}

	stats := dashboard.Compute(page)

	assert.Equal(t, 42, stats.TotalProducts)
	assert.Equal(t, 12, stats.TotalStock)
	assert.InDelta(t, 120.0, stats.AveragePrice, 0.001)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, map[string]int{"iluminacao": 1, "moveis": 2}, stats.ByCategory)
	assert.Equal(t, map[string]int{"Lumina": 1, "Casa": 2}, stats.ByBrand)
}

// TestCompute_EmptySample retorna zeros sem divisão por zero.
func TestCompute_EmptySample(t *testing.T) {
	stats := dashboard.Compute(domain.ProductPage{Total: 0})

	assert.Equal(t, 0, stats.TotalProducts)
	assert.Zero(t, stats.AveragePrice)
	assert.Zero(t, stats.AverageRating)
	assert.Empty(t, stats.ByCategory)
}
