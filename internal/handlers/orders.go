package handlers

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/models"
	"github.com/avagyan/atelier_orders/internal/mykafka"
	"github.com/avagyan/atelier_orders/internal/orderid"
	"github.com/avagyan/atelier_orders/internal/telegram"
)

// OrderNotifier forwards a new order to the operator channel.
type OrderNotifier interface {
	SendOrder(note telegram.OrderNote, imgPath string) error
}

type OrderHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	Notifier  OrderNotifier
	UploadDir string
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	form := func(name string) string { return c.FormValue(name) }

	userIDField := form("userId")
	city := form("city")
	address := form("address")
	size := form("size")
	price := form("price")
	orderDate := form("orderDate")
	deliveryDate := form("deliveryDate")
	productType := form("productType")

	img, imgErr := c.FormFile("orderImg")

	if userIDField == "" || city == "" || address == "" || size == "" || price == "" ||
		orderDate == "" || deliveryDate == "" || productType == "" || imgErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	formUID, err := strconv.ParseUint(userIDField, 10, 64)
	if err != nil || uint(formUID) != uid {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	location := form("location")

	imgPath, err := h.saveUpload(img)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	ctx := c.Request().Context()
	exists := func(id string) (bool, error) {
		var n int64
		if err := h.DB.WithContext(ctx).Model(&models.Order{}).Where("order_id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}

	publicID, err := orderid.Generate(location, exists)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	order := models.Order{
		OrderID:      publicID,
		UserID:       uid,
		Status:       models.StatusPending,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
		ProductType:  productType,
	}
	if err := h.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	note := telegram.OrderNote{
		OrderID:      publicID,
		ProductType:  productType,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
		Username:     form("username"),
		Email:        form("email"),
		Phone:        form("phone"),
		Location:     location,
		City:         city,
		Address:      address,
		Comment:      form("comment"),
		Size:         size,
		Price:        price,
		PromoCode:    form("promoCode"),
	}

	// On delivery failure the temp file stays behind; only the happy
	// path cleans up.
	if err := h.Notifier.SendOrder(note, imgPath); err != nil {
		c.Logger().Errorf("telegram delivery failed for %s: %v", publicID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if err := os.Remove(imgPath); err != nil {
		c.Logger().Errorf("upload cleanup failed: %v", err)
	}

	publish(c, h.Producer, "order_events", publicID, map[string]interface{}{
		"type":    "order_created",
		"orderID": publicID,
		"userID":  uid,
	})

	return c.JSON(http.StatusCreated, echo.Map{"orderID": publicID})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", uid).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) saveUpload(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), filepath.Ext(file.Filename))
	dst := filepath.Join(h.UploadDir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}
