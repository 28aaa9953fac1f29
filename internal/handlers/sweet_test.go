package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/repo"
	"github.com/sweetshop/backend/internal/service"
)

func newSweetHandler(t *testing.T) (*SweetHandler, *gorm.DB) {
	db := InitTestDB(t)
	store := repo.NewGormStore(db)
	return &SweetHandler{
		Service:  &service.InventoryService{Sweets: store},
		Producer: &mykafka.Producer{},
	}, db
}

func withID(c echo.Context, id uint) {
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(id), 10))
}

func TestCreateSweet(t *testing.T) {
	h, _ := newSweetHandler(t)
	e := echo.New()

	payload := map[string]interface{}{"name": "Mints", "category": "Candy", "price": 1.5, "quantity": 10}
	c, rec := jsonContext(e, http.MethodPost, "/api/sweets", payload)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Mints", resp.Name)
	require.Equal(t, int64(10), resp.Quantity)

	// duplicate name
	c, _ = jsonContext(e, http.MethodPost, "/api/sweets", payload)
	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Sweet with this name already exists", he.Message)

	// missing fields
	c, _ = jsonContext(e, http.MethodPost, "/api/sweets", map[string]interface{}{"name": "Toffee"})
	err = h.Create(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	// quantity left out of the body is a missing field even though the
	// other fields are fine
	c, _ = jsonContext(e, http.MethodPost, "/api/sweets", map[string]interface{}{"name": "Lollipop", "category": "Candy", "price": 1.0})
	err = h.Create(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	// an explicit zero quantity is accepted
	c, rec = jsonContext(e, http.MethodPost, "/api/sweets", map[string]interface{}{"name": "Lollipop", "category": "Candy", "price": 1.0, "quantity": 0})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(0), resp.Quantity)
}

func TestUpdateSweet(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	sweet := models.Sweet{Name: "Fudge", Category: "Candy", Price: 3.5, Quantity: 7}
	require.NoError(t, db.Create(&sweet).Error)

	// zero price is treated as "not supplied"
	c, rec := jsonContext(e, http.MethodPut, "/", map[string]interface{}{"price": 0})
	withID(c, sweet.ID)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3.5, resp.Price)

	c, rec = jsonContext(e, http.MethodPut, "/", map[string]interface{}{"price": 9.99})
	withID(c, sweet.ID)
	require.NoError(t, h.Update(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 9.99, resp.Price)
	require.Equal(t, "Fudge", resp.Name)

	c, _ = jsonContext(e, http.MethodPut, "/", map[string]interface{}{"price": 1})
	withID(c, 9999)
	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
	require.Equal(t, "Sweet not found", he.Message)
}

func TestDeleteSweet(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	sweet := models.Sweet{Name: "Toffee", Category: "Candy", Price: 1, Quantity: 1}
	require.NoError(t, db.Create(&sweet).Error)

	c, rec := jsonContext(e, http.MethodDelete, "/", nil)
	withID(c, sweet.ID)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Sweet removed", resp["message"])

	c, _ = jsonContext(e, http.MethodDelete, "/", nil)
	withID(c, sweet.ID)
	err := h.Delete(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestPurchaseSweet(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	sweet := models.Sweet{Name: "Caramel", Category: "Candy", Price: 1, Quantity: 1}
	require.NoError(t, db.Create(&sweet).Error)

	c, rec := jsonContext(e, http.MethodPost, "/", nil)
	withID(c, sweet.ID)
	require.NoError(t, h.Purchase(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(0), resp.Quantity)

	c, _ = jsonContext(e, http.MethodPost, "/", nil)
	withID(c, sweet.ID)
	err := h.Purchase(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Sweet is out of stock", he.Message)
}

func TestRestockSweet(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	sweet := models.Sweet{Name: "Nougat", Category: "Candy", Price: 2, Quantity: 5}
	require.NoError(t, db.Create(&sweet).Error)

	c, _ := jsonContext(e, http.MethodPost, "/", map[string]interface{}{"quantity": -5})
	withID(c, sweet.ID)
	err := h.Restock(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	c, rec := jsonContext(e, http.MethodPost, "/", map[string]interface{}{"quantity": 20})
	withID(c, sweet.ID)
	require.NoError(t, h.Restock(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(25), resp.Quantity)
}

func TestSearchSweets(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	require.NoError(t, db.Create(&models.Sweet{Name: "Chocolate Bar", Category: "Chocolate", Price: 2.5, Quantity: 10}).Error)
	require.NoError(t, db.Create(&models.Sweet{Name: "Gummy Bears", Category: "Gummy", Price: 1.5, Quantity: 5}).Error)

	c, rec := jsonContext(e, http.MethodGet, "/api/sweets/search?name=choc", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "Chocolate Bar", resp[0].Name)

	// no filters returns everything
	c, rec = jsonContext(e, http.MethodGet, "/api/sweets/search", nil)
	require.NoError(t, h.Search(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	c, _ = jsonContext(e, http.MethodGet, "/api/sweets/search?minPrice=abc", nil)
	err := h.Search(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestListSweets(t *testing.T) {
	h, db := newSweetHandler(t)
	e := echo.New()

	require.NoError(t, db.Create(&models.Sweet{Name: "Chocolate Bar", Category: "Chocolate", Price: 2.5, Quantity: 10}).Error)
	require.NoError(t, db.Create(&models.Sweet{Name: "Gummy Bears", Category: "Gummy", Price: 1.5, Quantity: 5}).Error)

	c, rec := jsonContext(e, http.MethodGet, "/api/sweets", nil)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.Sweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Chocolate Bar", resp[0].Name)
}
