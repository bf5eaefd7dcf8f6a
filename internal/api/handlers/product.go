package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/models"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid product input")
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		product, svcErr := h.productService.GetProductByID(r.Context(), id)
		if svcErr != nil {
			logger.Error("Failed to fetch product", slog.String("productId", id.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid product update input")
			return
		}

		product, svcErr := h.productService.UpdateProduct(r.Context(), id, &req)
		if svcErr != nil {
			logger.Error("Failed to update product", slog.String("productId", id.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		products, total, err := h.productService.ListProducts(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to fetch products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     products,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

func (h *ProductHandler) CreateVariant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		var req models.CreateVariantRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid variant input")
			return
		}

		variant, svcErr := h.productService.CreateVariant(r.Context(), productID, &req)
		if svcErr != nil {
			logger.Error("Failed to create variant", slog.String("productId", productID.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		logger.Info("Variant created",
			slog.String("productId", productID.String()),
			slog.String("variantId", variant.ID.String()))
		response.Success(w, http.StatusCreated, variant)
	}
}

func (h *ProductHandler) ListVariants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid product id", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		variants, svcErr := h.productService.ListVariants(r.Context(), productID)
		if svcErr != nil {
			logger.Error("Failed to fetch variants", slog.String("productId", productID.String()), slog.Any("error", svcErr))
			response.Error(w, svcErr)
			return
		}

		response.Success(w, http.StatusOK, variants)
	}
}

// Restock adds inventory to a single size/color variant.
func (h *ProductHandler) Restock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RestockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid restock input")
			return
		}

		variant, err := h.productService.Restock(r.Context(), &req)
		if err != nil {
			logger.Error("Failed to restock variant", slog.String("productId", req.ProductID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Variant restocked",
			slog.String("variantId", variant.ID.String()),
			slog.Int("quantity", variant.Quantity))
		response.Success(w, http.StatusOK, variant)
	}
}

// RecalculateStock re-derives every product's aggregate stock from its
// variants. Safe to run at any time.
func (h *ProductHandler) RecalculateStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		updated, err := h.productService.RecalculateTotalStock(r.Context())
		if err != nil {
			logger.Error("Failed to recalculate stock", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Total stock recalculated", slog.Int("productsUpdated", updated))
		response.Success(w, http.StatusOK, map[string]int{"productsUpdated": updated})
	}
}
