package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPlatform godoc
// @Summary      Get a platform
// @Tags         Platforms
// @Produce      json
// @Param        authority  path      string  true  "Platform authority public key"
// @Success      200        {object}  map[string]interface{}
// @Failure      404        {object}  map[string]string
// @Router       /v1/platforms/{authority} [get]
func (h *Handler) GetPlatform(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	addr, _, err := h.Service.Deriver.Platform(authority)
	if err != nil {
		respondError(c, err)
		return
	}
	platform, err := h.Service.Platform(c.Request.Context(), addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr, "platform": platform})
}

// GetPlatformDrivers godoc
// @Summary      List drivers of a platform
// @Description  Scans program accounts for driver profiles registered under the platform
// @Tags         Platforms
// @Produce      json
// @Param        authority  path      string  true  "Platform authority public key"
// @Success      200        {array}   orchestrator.DriverEntry
// @Failure      400        {object}  map[string]string
// @Router       /v1/platforms/{authority}/drivers [get]
func (h *Handler) GetPlatformDrivers(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	addr, _, err := h.Service.Deriver.Platform(authority)
	if err != nil {
		respondError(c, err)
		return
	}
	drivers, err := h.Service.PlatformDrivers(c.Request.Context(), addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// DumpAccounts godoc
// @Summary      Dump plate mappings and driver profiles
// @Description  Accounts that fail to decode are listed under errors
// @Tags         Debug
// @Produce      json
// @Success      200  {object}  orchestrator.AccountDump
// @Router       /v1/debug/accounts [get]
func (h *Handler) DumpAccounts(c *gin.Context) {
	dump, err := h.Service.DumpAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dump)
}

// GetJournalEntry godoc
// @Summary      Get a submission journal entry
// @Tags         Journal
// @Produce      json
// @Param        id   path      string  true  "Journal entry id"
// @Success      200  {object}  journal.Entry
// @Failure      404  {object}  map[string]string
// @Router       /v1/journal/{id} [get]
func (h *Handler) GetJournalEntry(c *gin.Context) {
	if h.Journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal is disabled"})
		return
	}
	entry, err := h.Journal.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
