package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
	"github.com/macrolens/diettracker/internal/infrastructure/realtime"
	"github.com/macrolens/diettracker/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	tracker *usecase.TrackerService
	units   *usecase.UnitFormatter
	hub     *realtime.Hub
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. hub may be nil when live updates are disabled.
func NewHandler(tracker *usecase.TrackerService, units *usecase.UnitFormatter, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if units == nil {
		units = usecase.NewUnitFormatter(logger)
	}
	return &Handler{tracker: tracker, units: units, hub: hub, logger: logger}
}

type itemResponse struct {
	ID           string                `json:"id"`
	Kind         string                `json:"kind"`
	Name         string                `json:"name"`
	Category     domain.MealCategory   `json:"category"`
	Amount       float64               `json:"amount"`
	Unit         domain.UnitCode       `json:"unit"`
	AmountLabel  string                `json:"amountLabel"`
	Nutrition    domain.NutritionFacts `json:"nutrition"`
	HasNutrition bool                  `json:"hasNutrition"`
	Consumed     bool                  `json:"consumed"`
	Hidden       bool                  `json:"hidden"`
	IsUserAdded  bool                  `json:"isUserAdded,omitempty"`
}

type totalsResponse struct {
	Planned   domain.NutritionFacts `json:"planned"`
	Consumed  domain.NutritionFacts `json:"consumed"`
	Remaining domain.NutritionFacts `json:"remaining"`
	Complete  bool                  `json:"complete"`
	Over      []string              `json:"over"`
}

type mealResponse struct {
	Category domain.MealCategory `json:"category"`
	Items    []itemResponse      `json:"items"`
	Totals   totalsResponse      `json:"totals"`
}

func newTotalsResponse(t domain.Totals) totalsResponse {
	over := t.Over()
	if over == nil {
		over = []string{}
	}
	return totalsResponse{
		Planned:   t.Planned,
		Consumed:  t.Consumed,
		Remaining: t.Remaining,
		Complete:  t.Complete(),
		Over:      over,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "diet-tracker",
		"version": "1.0.0",
		"date":    h.tracker.Today(),
	})
}

// GetMeals returns every meal with its rows and totals
func (h *Handler) GetMeals(c *gin.Context) {
	view := h.tracker.DayView()

	meals := make([]mealResponse, 0, len(view.Meals))
	for _, meal := range view.Meals {
		meals = append(meals, h.mealFromView(meal))
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  view.Date,
		"meals": meals,
		"daily": newTotalsResponse(view.Daily),
	})
}

// GetMeal returns one meal with its rows and totals
func (h *Handler) GetMeal(c *gin.Context) {
	category, err := domain.ParseMealCategory(c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	view, err := h.tracker.MealView(category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mealFromView(view))
}

func (h *Handler) mealFromView(view usecase.MealView) mealResponse {
	items := make([]itemResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, h.itemFromLine(line))
	}

	return mealResponse{
		Category: view.Category,
		Items:    items,
		Totals:   newTotalsResponse(view.Totals),
	}
}

func (h *Handler) itemFromLine(line domain.LineItem) itemResponse {
	item := itemResponse{
		ID:       line.ID(),
		Kind:     line.Kind.String(),
		Category: line.Category(),
		Consumed: line.Consumed,
		Hidden:   line.Hidden,
	}

	if line.Kind == domain.LineCustom {
		item.Name = line.Custom.Name
		item.Amount = line.Custom.Amount
		item.Unit = line.Custom.Unit
	} else {
		item.Name = line.Planned.Name
		item.Amount = line.Planned.Amount
		item.Unit = line.Planned.Unit
		item.IsUserAdded = line.Planned.IsUserAdded
	}
	item.AmountLabel = h.units.Format(item.Amount, item.Unit)

	if facts, ok := h.tracker.LineFacts(line); ok {
		item.Nutrition = facts.Rounded()
		item.HasNutrition = true
	}
	return item
}

// GetTotals returns the daily totals
func (h *Handler) GetTotals(c *gin.Context) {
	snapshot := h.tracker.Snapshot()
	daily := snapshot.Daily
	c.JSON(http.StatusOK, gin.H{
		"date":   snapshot.Date,
		"totals": newTotalsResponse(daily),
		"label":  usecase.FormatNumber(daily.Remaining.Calories) + " kcal left",
	})
}

// SubmitItem adds a custom item for today
func (h *Handler) SubmitItem(c *gin.Context) {
	var req domain.NewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	item, err := h.tracker.SubmitNewItem(c.Request.Context(), req)
	if err != nil && !isPersistOnly(err) {
		h.writeError(c, err)
		return
	}

	body := gin.H{"item": item}
	if err != nil {
		body["warning"] = persistWarning
	}
	c.JSON(http.StatusCreated, body)
}

// ToggleItem flips the consumed flag of an item
func (h *Handler) ToggleItem(c *gin.Context) {
	id := c.Param("id")
	consumed, err := h.tracker.ToggleConsumed(c.Request.Context(), id)
	if err != nil && !isPersistOnly(err) {
		h.writeError(c, err)
		return
	}

	body := gin.H{"id": id, "consumed": consumed}
	if err != nil {
		body["warning"] = persistWarning
	}
	c.JSON(http.StatusOK, body)
}

type consumedRequest struct {
	Consumed *bool `json:"consumed" binding:"required"`
}

// SetConsumed sets the consumed flag of an item
func (h *Handler) SetConsumed(c *gin.Context) {
	var req consumedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "consumed is required"})
		return
	}

	id := c.Param("id")
	err := h.tracker.SetConsumed(c.Request.Context(), id, *req.Consumed)
	if err != nil && !isPersistOnly(err) {
		h.writeError(c, err)
		return
	}

	body := gin.H{"id": id, "consumed": *req.Consumed}
	if err != nil {
		body["warning"] = persistWarning
	}
	c.JSON(http.StatusOK, body)
}

type hiddenRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// SetHidden hides or shows an item for today
func (h *Handler) SetHidden(c *gin.Context) {
	var req hiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hidden is required"})
		return
	}

	id := c.Param("id")
	err := h.tracker.SetHidden(c.Request.Context(), id, *req.Hidden)
	if err != nil && !isPersistOnly(err) {
		h.writeError(c, err)
		return
	}

	body := gin.H{"id": id, "hidden": *req.Hidden}
	if err != nil {
		body["warning"] = persistWarning
	}
	c.JSON(http.StatusOK, body)
}

// SearchCatalog suggests known items for the add-item dialog
func (h *Handler) SearchCatalog(c *gin.Context) {
	limit := usecase.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results := h.tracker.SearchCatalog(c.Query("q"), limit)
	if results == nil {
		results = []domain.CatalogSuggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ResetState clears today's flags and custom items
func (h *Handler) ResetState(c *gin.Context) {
	err := h.tracker.ResetAll(c.Request.Context())
	if err != nil && !isPersistOnly(err) {
		h.writeError(c, err)
		return
	}

	body := gin.H{"status": "reset"}
	if err != nil {
		body["warning"] = persistWarning
	}
	c.JSON(http.StatusOK, body)
}

// Realtime streams totals snapshots over a websocket
func (h *Handler) Realtime(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "live updates are not configured"})
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}

const persistWarning = "change saved for this session only: storage write failed"

// isPersistOnly reports whether every wrapped error is a persistence failure
func isPersistOnly(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !isPersistOnly(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, domain.ErrPersist)
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownCategory):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
