package handlers

import (
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

type derivedAddress struct {
	Address solana.PublicKey `json:"address"`
	Bump    uint8            `json:"bump"`
}

func respondDerived(c *gin.Context, addr solana.PublicKey, bump uint8, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, derivedAddress{Address: addr, Bump: bump})
}

// DerivePlatform godoc
// @Summary      Derive a platform address
// @Tags         Addresses
// @Produce      json
// @Param        authority  path      string  true  "Platform authority public key"
// @Success      200        {object}  map[string]interface{}
// @Router       /v1/addresses/platform/{authority} [get]
func (h *Handler) DerivePlatform(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	addr, bump, err := h.Service.Deriver.Platform(authority)
	respondDerived(c, addr, bump, err)
}

// DeriveDriver godoc
// @Summary      Derive a driver profile address
// @Tags         Addresses
// @Produce      json
// @Param        authority  path      string  true  "Driver authority public key"
// @Success      200        {object}  map[string]interface{}
// @Router       /v1/addresses/driver/{authority} [get]
func (h *Handler) DeriveDriver(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	addr, bump, err := h.Service.Deriver.Driver(authority)
	respondDerived(c, addr, bump, err)
}

// DerivePlate godoc
// @Summary      Derive a license plate mapping address
// @Tags         Addresses
// @Produce      json
// @Param        plate  path      string  true  "License plate"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Router       /v1/addresses/plate/{plate} [get]
func (h *Handler) DerivePlate(c *gin.Context) {
	addr, bump, err := h.Service.Deriver.Plate(c.Param("plate"))
	respondDerived(c, addr, bump, err)
}

// DeriveReview godoc
// @Summary      Derive a review address
// @Tags         Addresses
// @Produce      json
// @Param        profile  path      string  true  "Driver profile address"
// @Param        index    path      int     true  "Review index"
// @Success      200      {object}  map[string]interface{}
// @Router       /v1/addresses/review/{profile}/{index} [get]
func (h *Handler) DeriveReview(c *gin.Context) {
	profile, ok := publicKeyParam(c, "profile")
	if !ok {
		return
	}
	index, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index: " + err.Error()})
		return
	}
	addr, bump, err := h.Service.Deriver.Review(profile, index)
	respondDerived(c, addr, bump, err)
}
