package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// ProductUseCase CRUD-lite del catálogo. El stock y el costo promedio NO se
// tocan aquí: los mantiene exclusivamente el motor de inventario.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// CreateProductInput datos de alta de un producto de catálogo.
type CreateProductInput struct {
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal
	PriceMode     string // manual | automatic (vacío = manual)
	MarginPercent decimal.Decimal
}

// Create da de alta un producto. Stock y costo inician en cero.
func (uc *ProductUseCase) Create(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	mode := in.PriceMode
	if mode == "" {
		mode = entity.PriceModeManual
	}
	if mode != entity.PriceModeManual && mode != entity.PriceModeAutomatic {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.MarginPercent.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		SKU:              in.SKU,
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price,
		PriceMode:        mode,
		MarginPercent:    in.MarginPercent,
		AverageCost:      decimal.Zero,
		LastPurchaseCost: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.repo.List(ctx, limit, offset)
}
