package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/domain"
	apperror "backoffice/internal/errors"
	"backoffice/internal/pkg/cache"
	"backoffice/internal/pkg/logger"
)

// Chave de cache para produtos individuais.
const productCacheKey = "product:%s"

// ProductRepository implementa a interface domain.ProductRepository.
// Contém as conexões necessárias para acessar dados (PostgreSQL + Redis).
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO products (id, title, brand, category, price, stock, rating, description, created_at, updated_at)
                       VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		product.ID,
		product.Title,
		product.Brand,
		product.Category,
		product.Price,
		product.Stock,
		product.Rating,
		product.Description,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao inserir produto", err)
	}

	r.logger.Debug("Produto inserido.", map[string]interface{}{"id": product.ID})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Desserialização falhou: segue para o DB e o cache será reescrito
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (conexão perdida): degrada para o DB
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	const query = `
		SELECT id, title, brand, category, price, stock, rating, description, created_at, updated_at
		FROM products
		WHERE id = $1`

	row := r.DB.QueryRowContext(ctxTimeout, query, id)

	err = row.Scan(
		&product.ID,
		&product.Title,
		&product.Brand,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.Rating,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		// O Serviço receberá isso e o Handler o mapeará para 404.
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}

	// 3. Popula o cache para futuras requisições (TTL do config)
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll retorna uma página de produtos mais o total da coleção (com ou sem
// filtro de busca). O total considera o MESMO filtro da listagem, para que a
// paginação do back-office seja consistente.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		rows  *sql.Rows
		total int
		err   error
	)

	if filter.Query != "" {
		// Busca por título, marca ou categoria (case-insensitive)
		pattern := "%" + filter.Query + "%"

		const countSQL = `SELECT COUNT(*) FROM products
			WHERE title ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1`
		if err = r.DB.QueryRowContext(ctxTimeout, countSQL, pattern).Scan(&total); err != nil {
			return domain.ProductPage{}, apperror.NewDBError("Falha ao contar produtos na busca", err)
		}

		const searchSQL = `
			SELECT id, title, brand, category, price, stock, rating, description, created_at, updated_at
			FROM products
			WHERE title ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1
			ORDER BY created_at, id
			OFFSET $2 LIMIT $3`
		rows, err = r.DB.QueryContext(ctxTimeout, searchSQL, pattern, filter.Skip, filter.Limit)
	} else {
		const countSQL = `SELECT COUNT(*) FROM products`
		if err = r.DB.QueryRowContext(ctxTimeout, countSQL).Scan(&total); err != nil {
			return domain.ProductPage{}, apperror.NewDBError("Falha ao contar produtos", err)
		}

		const listSQL = `
			SELECT id, title, brand, category, price, stock, rating, description, created_at, updated_at
			FROM products
			ORDER BY created_at, id
			OFFSET $1 LIMIT $2`
		rows, err = r.DB.QueryContext(ctxTimeout, listSQL, filter.Skip, filter.Limit)
	}

	if err != nil {
		return domain.ProductPage{}, apperror.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, filter.Limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Brand, &p.Category,
			&p.Price, &p.Stock, &p.Rating, &p.Description,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return domain.ProductPage{}, apperror.NewDBError("Falha ao mapear produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductPage{}, apperror.NewDBError("Falha ao iterar produtos", err)
	}

	return domain.ProductPage{Products: products, Total: total}, nil
}

// Update persiste o conjunto completo de campos editáveis do produto e
// invalida a entrada de cache correspondente.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE products
		SET title = $2, brand = $3, category = $4, price = $5, stock = $6, description = $7, updated_at = $8
		WHERE id = $1`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		product.ID,
		product.Title,
		product.Brand,
		product.Category,
		product.Price,
		product.Stock,
		product.Description,
		product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao atualizar produto", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao verificar atualização", err)
	}
	if affected == 0 {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", product.ID))
	}

	// Invalidação do cache (a próxima leitura repopula)
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, product.ID))

	// Recarrega o registro completo (rating e created_at são preservados no DB)
	return r.FindByID(ctx, product.ID)
}

// Delete remove o produto e invalida a entrada de cache correspondente.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("Falha ao excluir produto", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar exclusão", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))
	r.logger.Debug("Produto excluído do repositório.", map[string]interface{}{"id": id})
	return nil
}
