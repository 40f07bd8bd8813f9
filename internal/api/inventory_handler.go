package api

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// InventoryHandler serves the item endpoints the dashboard dialogs submit to
type InventoryHandler struct {
	store    interfaces.InventoryStore
	validate *validator.Validate
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(store interfaces.InventoryStore) *InventoryHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return &InventoryHandler{store: store, validate: validate}
}

// RegisterRoutes mounts the inventory endpoints
func (h *InventoryHandler) RegisterRoutes(group *gin.RouterGroup) {
	inventory := group.Group("/inventory")
	{
		inventory.GET("", h.listItems)
		inventory.GET("/low-stock", h.listLowStock)
		inventory.GET("/:id", h.getItem)
		inventory.POST("", h.createItem)
		inventory.PATCH("/:id", h.updateItem)
		inventory.DELETE("/:id", h.deleteItem)
	}
}

func (h *InventoryHandler) listItems(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	Response.Success(c, items)
}

func (h *InventoryHandler) listLowStock(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	low := make([]models.InventoryItem, 0, len(items))
	for i := range items {
		if items[i].IsLowStock() {
			low = append(low, items[i])
		}
	}
	Response.Success(c, low)
}

func (h *InventoryHandler) getItem(c *gin.Context) {
	item, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	Response.Success(c, item)
}

func (h *InventoryHandler) createItem(c *gin.Context) {
	var req models.NewItem
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !h.valid(c, req) {
		return
	}
	if err := models.ValidatePrice(req.Price); err != nil {
		_ = c.Error(err)
		return
	}

	item, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", "/api/v1/inventory/"+item.ID)
	Response.Created(c, item)
}

func (h *InventoryHandler) updateItem(c *gin.Context) {
	var patch models.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if patch.IsEmpty() {
		Response.ValidationError(c, "body", "At least one field must be provided")
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if !h.valid(c, patch) {
		return
	}
	if patch.Price != nil {
		if err := models.ValidatePrice(*patch.Price); err != nil {
			_ = c.Error(err)
			return
		}
	}

	item, err := h.store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	Response.Success(c, item)
}

func (h *InventoryHandler) deleteItem(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	Response.NoContent(c)
}

// valid runs struct validation and renders violations on failure
func (h *InventoryHandler) valid(c *gin.Context, v any) bool {
	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	return false
}
