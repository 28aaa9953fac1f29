package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/repo"
	"github.com/sweetshop/backend/internal/service"
)

type SweetHandler struct {
	Service  *service.InventoryService
	Producer *mykafka.Producer
}

func sweetError(err error) *echo.HTTPError {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, repo.ErrDuplicateSweet):
		return echo.NewHTTPError(http.StatusBadRequest, "Sweet with this name already exists")
	case errors.Is(err, repo.ErrOutOfStock):
		return echo.NewHTTPError(http.StatusBadRequest, "Sweet is out of stock")
	case errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Sweet not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func sweetID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Sweet not found")
	}
	return uint(id), nil
}

func (h *SweetHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicSweetEvents, fmt.Sprint(event["sweetID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func sweetEvent(kind string, s *models.Sweet) map[string]interface{} {
	return map[string]interface{}{
		"type":    kind,
		"sweetID": s.ID,
		"sweet":   s,
	}
}

func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.Service.List(c.Request().Context())
	if err != nil {
		return sweetError(err)
	}
	return c.JSON(http.StatusOK, sweets)
}

func (h *SweetHandler) Search(c echo.Context) error {
	filter := repo.SweetFilter{
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
	}
	if raw := c.QueryParam("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "minPrice must be a number")
		}
		filter.MinPrice = &v
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "maxPrice must be a number")
		}
		filter.MaxPrice = &v
	}

	sweets, err := h.Service.Search(c.Request().Context(), filter)
	if err != nil {
		return sweetError(err)
	}
	return c.JSON(http.StatusOK, sweets)
}

func (h *SweetHandler) Create(c echo.Context) error {
	var req struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Quantity *int64  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sweet, err := h.Service.Create(c.Request().Context(), req.Name, req.Category, req.Price, req.Quantity)
	if err != nil {
		return sweetError(err)
	}

	h.publish(c, sweetEvent("sweet_created", sweet))
	return c.JSON(http.StatusCreated, sweet)
}

func (h *SweetHandler) Update(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name     *string  `json:"name"`
		Category *string  `json:"category"`
		Price    *float64 `json:"price"`
		Quantity *int64   `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sweet, err := h.Service.Update(c.Request().Context(), id, service.UpdateSweet{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		return sweetError(err)
	}

	h.publish(c, sweetEvent("sweet_updated", sweet))
	return c.JSON(http.StatusOK, sweet)
}

func (h *SweetHandler) Delete(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	if err := h.Service.Delete(c.Request().Context(), id); err != nil {
		return sweetError(err)
	}

	h.publish(c, map[string]interface{}{
		"type":    "sweet_deleted",
		"sweetID": id,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Sweet removed",
	})
}

func (h *SweetHandler) Purchase(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	sweet, err := h.Service.Purchase(c.Request().Context(), id)
	if err != nil {
		return sweetError(err)
	}

	h.publish(c, sweetEvent("sweet_purchased", sweet))
	return c.JSON(http.StatusOK, sweet)
}

func (h *SweetHandler) Restock(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sweet, err := h.Service.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return sweetError(err)
	}

	h.publish(c, sweetEvent("sweet_restocked", sweet))
	return c.JSON(http.StatusOK, sweet)
}
