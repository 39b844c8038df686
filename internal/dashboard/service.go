package dashboard

import (
	"context"

	"backoffice/internal/domain"
	"backoffice/internal/notify"
	"backoffice/internal/pkg/logger"
)

// Stats agrega as estatísticas exibidas no painel inicial do back-office.
// Os mapas por categoria e por marca alimentam os gráficos.
type Stats struct {
	TotalProducts int     `json:"total_products"`
	TotalStock    int     `json:"total_stock"`
	AveragePrice  float64 `json:"average_price"`
	AverageRating float64 `json:"average_rating"`
	OutOfStock    int     `json:"out_of_stock"`

	ByCategory map[string]int `json:"by_category"`
	ByBrand    map[string]int `json:"by_brand"`
}

// Service calcula as estatísticas a partir de uma amostra de produtos do
// provider. O total de produtos vem do total reportado pela coleção, não do
// tamanho da amostra.
type Service struct {
	provider   domain.ProductProvider
	notifier   notify.Notifier
	messages   *notify.Catalog
	logger     logger.Logger
	sampleSize int
}

// NewService cria o serviço de dashboard.
func NewService(provider domain.ProductProvider, notifier notify.Notifier, messages *notify.Catalog, log logger.Logger, sampleSize int) *Service {
	if sampleSize <= 0 {
		sampleSize = 100
	}
	return &Service{
		provider:   provider,
		notifier:   notifier,
		messages:   messages,
		logger:     log,
		sampleSize: sampleSize,
	}
}

// Load busca a amostra e computa as estatísticas. Falhas são notificadas ao
// operador e retornadas; o chamador exibe o painel vazio.
func (s *Service) Load(ctx context.Context) (Stats, error) {
	page, err := s.provider.List(ctx, 0, s.sampleSize)
	if err != nil {
		s.logger.Error("Falha ao carregar dados do dashboard.", err)
		s.notifier.Failure(s.messages.T("dashboard_fetch_error"))
		return Stats{}, err
	}

	return Compute(page), nil
}

// Compute calcula as estatísticas sobre uma página de produtos.
func Compute(page domain.ProductPage) Stats {
	stats := Stats{
		TotalProducts: page.Total,
		ByCategory:    make(map[string]int),
		ByBrand:       make(map[string]int),
	}

	if len(page.Products) == 0 {
		return stats
	}

	var priceSum, ratingSum float64
	for _, p := range page.Products {
		stats.TotalStock += p.Stock
		priceSum += p.Price
		ratingSum += p.Rating
		if p.Stock == 0 {
			stats.OutOfStock++
		}
		if p.Category != "" {
			stats.ByCategory[p.Category]++
		}
		if p.Brand != "" {
			stats.ByBrand[p.Brand]++
		}
	}

	n := float64(len(page.Products))
	stats.AveragePrice = priceSum / n
	stats.AverageRating = ratingSum / n

	return stats
}
