package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garden_panel/internal/models"
	"garden_panel/internal/panel"
	"garden_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusStopped  = "stopped"
	statusReloaded = "reloaded"
	statusPressed  = "pressed"

	errZoneNotFound   = "zone not found"
	errActionNotFound = "action not found"
	errReloadZones    = "failed to reload zones"
	errStartZone      = "failed to start zone"
	errStopZone       = "failed to stop zone"
	errPressAction    = "failed to run action"
	errRenderPage     = "failed to render dashboard"
	errInvalidTime    = "invalid 'time'; use a duration like 10m or whole minutes"
	errInvalidIndex   = "invalid action index"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// commandError maps a zone command failure to a status code.
func (h *Handler) commandError(c *gin.Context, userMsg, logKey string, err error, id models.ZoneID) {
	switch {
	case errors.Is(err, service.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errZoneNotFound})
	case errors.Is(err, panel.ErrNoAction):
		c.JSON(http.StatusNotFound, gin.H{"error": errActionNotFound})
	default:
		h.logAndJSONError(c, http.StatusBadGateway, userMsg, logKey, err, "zone", id)
	}
}

// respondWithZone writes status plus the current record of id when known.
func (h *Handler) respondWithZone(c *gin.Context, status string, id models.ZoneID) {
	resp := gin.H{"status": status}
	if rec, ok := h.services.Zones.Zone(id); ok {
		resp["zone"] = rec
	}
	c.JSON(http.StatusOK, resp)
}

// parseRunLength reads ?time as a Go duration or whole minutes. Empty is zero.
func parseRunLength(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if mins, err := strconv.Atoi(s); err == nil {
		if mins < 0 {
			return 0, fmt.Errorf("negative run length %q", s)
		}
		return time.Duration(mins) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative run length %q", s)
	}
	return d, nil
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Dashboard
// @Description  Full HTML page with one panel per zone
// @Tags         ui
// @Produce      html
// @Success      200  {string}  string
// @Failure      500  {object}  map[string]string
// @Router       / [get]
func (h *Handler) dashboard(c *gin.Context) {
	page, err := h.services.Zones.RenderPage()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRenderPage, "dashboard_render_failed", err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// @Summary      List zones
// @Tags         zones
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, zones"
// @Router       /api/v1/zones [get]
func (h *Handler) listZones(c *gin.Context) {
	zones := h.services.Zones.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"count": len(zones),
		"zones": zones,
	})
}

// @Summary      Get zone
// @Tags         zones
// @Produce      json
// @Param        id   path      string  true  "Zone id"
// @Success      200  {object}  models.ZoneRecord
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/zones/{id} [get]
func (h *Handler) getZone(c *gin.Context) {
	rec, ok := h.services.Zones.Zone(models.ZoneID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errZoneNotFound})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Reload zones
// @Description  Fetches the zone list from the garden controller now
// @Tags         zones
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, count"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/zones/reload [post]
func (h *Handler) reloadZones(c *gin.Context) {
	if err := h.services.Zones.Load(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errReloadZones, "zones_reload_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusReloaded,
		"count":  len(h.services.Zones.Snapshot()),
	})
}

// @Summary      Start zone
// @Tags         zones
// @Produce      json
// @Param        id    path      string  true   "Zone id"
// @Param        time  query     string  false  "Run length: Go duration (10m) or whole minutes (10)"
// @Success      200   {object}  map[string]interface{}  "status, zone"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/zones/{id}/start [post]
func (h *Handler) startZone(c *gin.Context) {
	id := models.ZoneID(c.Param("id"))
	runLength, err := parseRunLength(c.Query("time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidTime})
		return
	}
	if err := h.services.Zones.Start(c.Request.Context(), id, runLength); err != nil {
		h.commandError(c, errStartZone, "zone_start_failed", err, id)
		return
	}
	h.respondWithZone(c, statusStarted, id)
}

// @Summary      Stop zone
// @Tags         zones
// @Produce      json
// @Param        id   path      string  true  "Zone id"
// @Success      200  {object}  map[string]interface{}  "status, zone"
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/zones/{id}/stop [post]
func (h *Handler) stopZone(c *gin.Context) {
	id := models.ZoneID(c.Param("id"))
	if err := h.services.Zones.Stop(c.Request.Context(), id); err != nil {
		h.commandError(c, errStopZone, "zone_stop_failed", err, id)
		return
	}
	h.respondWithZone(c, statusStopped, id)
}

// @Summary      Press a dashboard button
// @Description  Runs the action bound to button {index} of the zone panel by its last render
// @Tags         ui
// @Produce      json
// @Param        id     path      string  true  "Zone id"
// @Param        index  path      int     true  "Button index"
// @Success      200    {object}  map[string]interface{}  "status, zone"
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      502    {object}  map[string]string
// @Router       /ui/zones/{id}/actions/{index} [post]
func (h *Handler) pressAction(c *gin.Context) {
	id := models.ZoneID(c.Param("id"))
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIndex})
		return
	}
	if err := h.services.Zones.Press(c.Request.Context(), id, index); err != nil {
		h.commandError(c, errPressAction, "zone_action_failed", err, id)
		return
	}
	h.respondWithZone(c, statusPressed, id)
}
