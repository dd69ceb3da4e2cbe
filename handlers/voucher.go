package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/middlewares"
	"github.com/mmdatafocus/vouchers_backend/models"
)

type VoucherHandler struct {
	Store  *models.Store
	Logger *logrus.Logger
}

type voucherDetailInput struct {
	Particular     string  `json:"particular" binding:"required"`
	ParticularNote string  `json:"particular_note"`
	Ply            string  `json:"ply"`
	Size           string  `json:"size"`
	UnitPrice      float64 `json:"unit_price" binding:"required,gt=0"`
	Qty            int     `json:"qty" binding:"required,gt=0"`
	Note           string  `json:"note"`
}

type createVoucherInput struct {
	VoucherNumber string               `json:"voucher_number" binding:"required"`
	Date          time.Time            `json:"date" binding:"required"`
	CustomerName  string               `json:"customer_name" binding:"required"`
	TruckName     string               `json:"truck_name" binding:"required"`
	Details       []voucherDetailInput `json:"details" binding:"required,min=1,dive"`
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var input createVoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := middlewares.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	ctx := c.Request.Context()

	customerID, err := h.Store.FindOrCreateCustomer(ctx, input.CustomerName)
	if err != nil {
		config.LogError(h.Logger, "handlers", "Create", "resolve customer", input.CustomerName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	truckID, err := h.Store.FindOrCreateTruck(ctx, input.TruckName)
	if err != nil {
		config.LogError(h.Logger, "handlers", "Create", "resolve truck", input.TruckName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	voucher := &models.Voucher{
		VoucherNumber: input.VoucherNumber,
		Date:          input.Date,
		CustomerID:    customerID,
		TruckID:       truckID,
		CreatedByID:   userID,
	}
	if err := h.Store.CreateVoucher(ctx, voucher); err != nil {
		config.LogError(h.Logger, "handlers", "Create", "insert voucher", input.VoucherNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	details := make([]models.VoucherDetail, 0, len(input.Details))
	for _, d := range input.Details {
		// Amount is derived server-side, the client never sends totals.
		amount := decimal.NewFromFloat(d.UnitPrice).Mul(decimal.NewFromInt(int64(d.Qty)))
		details = append(details, models.VoucherDetail{
			VoucherID:      voucher.ID,
			Particular:     d.Particular,
			ParticularNote: d.ParticularNote,
			Ply:            d.Ply,
			Size:           d.Size,
			UnitPrice:      d.UnitPrice,
			Qty:            d.Qty,
			Amount:         amount.InexactFloat64(),
			Note:           d.Note,
		})
	}
	if err := h.Store.CreateVoucherDetails(ctx, details); err != nil {
		config.LogError(h.Logger, "handlers", "Create", "insert details", input.VoucherNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	created, err := h.Store.VoucherByID(ctx, voucher.ID)
	if err != nil {
		config.LogError(h.Logger, "handlers", "Create", "reload voucher", voucher.ID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *VoucherHandler) List(c *gin.Context) {
	page := intQuery(c, "pageIndex", 1)
	rowPerPage := intQuery(c, "rowPerPage", 10)
	search := c.Query("search")

	startDate, err := dateQuery(c, "startDate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be YYYY-MM-DD"})
		return
	}
	endDate, err := dateQuery(c, "endDate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be YYYY-MM-DD"})
		return
	}

	list, err := h.Store.VoucherPage(c.Request.Context(), page, rowPerPage, search, startDate, endDate)
	if err != nil {
		config.LogError(h.Logger, "handlers", "List", "load voucher page", page, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VoucherHandler) Detail(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voucher id"})
		return
	}

	voucher, err := h.Store.VoucherByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "voucher not found"})
			return
		}
		config.LogError(h.Logger, "handlers", "Detail", "load voucher", id.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, voucher)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
