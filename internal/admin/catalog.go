package admin

import (
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/events"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListCategories(r.Context())
	writeList(w, items, err, "category")
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateCategory(r.Context(), db.CreateCategoryParams{Name: in.Name, Description: in.Description})
	if err != nil {
		common.WriteError(w, storeError("category", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "category", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateCategory(r.Context(), db.UpdateCategoryParams{ID: id, Name: in.Name, Description: in.Description})
	if err != nil {
		common.WriteError(w, storeError("category", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "category", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "category", events.TopicCatalogChanged, h.Store.DeleteCategory)
}

func (h *Handler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListSubCategories(r.Context())
	writeList(w, items, err, "sub category")
}

func (h *Handler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	var in subCategoryPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateSubCategory(r.Context(), db.CreateSubCategoryParams{CategoryID: in.CategoryID, Name: in.Name})
	if err != nil {
		common.WriteError(w, storeError("sub category", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "sub_category", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	var in subCategoryPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateSubCategory(r.Context(), db.UpdateSubCategoryParams{ID: id, CategoryID: in.CategoryID, Name: in.Name})
	if err != nil {
		common.WriteError(w, storeError("sub category", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "sub_category", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "sub_category", events.TopicCatalogChanged, h.Store.DeleteSubCategory)
}

func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListBrands(r.Context())
	writeList(w, items, err, "brand")
}

func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var in brandPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateBrand(r.Context(), db.CreateBrandParams{Name: in.Name, CategoryID: in.CategoryID, SubCategoryID: in.SubCategoryID})
	if err != nil {
		common.WriteError(w, storeError("brand", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "brand", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var in brandPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateBrand(r.Context(), db.UpdateBrandParams{ID: id, Name: in.Name, CategoryID: in.CategoryID, SubCategoryID: in.SubCategoryID})
	if err != nil {
		common.WriteError(w, storeError("brand", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "brand", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "brand", events.TopicCatalogChanged, h.Store.DeleteBrand)
}

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListUnits(r.Context())
	writeList(w, items, err, "unit")
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var in unitPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateUnit(r.Context(), in.Name)
	if err != nil {
		common.WriteError(w, storeError("unit", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "unit", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	var in unitPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateUnit(r.Context(), db.UpdateUnitParams{ID: id, Name: in.Name})
	if err != nil {
		common.WriteError(w, storeError("unit", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "unit", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "unit", events.TopicCatalogChanged, h.Store.DeleteUnit)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListCatalogProducts(r.Context())
	writeList(w, items, err, "product")
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		common.WriteError(w, storeError("product", err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateProduct(r.Context(), params)
	if err != nil {
		common.WriteError(w, storeError("product", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "product", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in productPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateProduct(r.Context(), id, params)
	if err != nil {
		common.WriteError(w, storeError("product", err))
		return
	}
	h.changed(r.Context(), events.TopicCatalogChanged, "product", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "product", events.TopicCatalogChanged, h.Store.DeleteProduct)
}
