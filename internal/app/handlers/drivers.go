package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// GetDriverByPlate godoc
// @Summary      Look up a driver by license plate
// @Description  Resolves the plate mapping and reads the driver profile it points to
// @Tags         Drivers
// @Produce      json
// @Param        plate  path      string  true  "License plate"
// @Success      200    {object}  orchestrator.DriverEntry
// @Failure      404    {object}  map[string]string
// @Router       /v1/plates/{plate} [get]
func (h *Handler) GetDriverByPlate(c *gin.Context) {
	entry, err := h.Service.LookupDriver(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetDriver godoc
// @Summary      Get a driver profile
// @Tags         Drivers
// @Produce      json
// @Param        authority  path      string  true  "Driver authority public key"
// @Success      200        {object}  orchestrator.DriverEntry
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /v1/drivers/{authority} [get]
func (h *Handler) GetDriver(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	entry, err := h.Service.Driver(c.Request.Context(), authority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetDriverReviews godoc
// @Summary      List reviews of a driver
// @Description  Reads review slots 0 to review_count-1; missing slots are skipped
// @Tags         Drivers
// @Produce      json
// @Param        authority  path      string  true  "Driver authority public key"
// @Success      200        {array}   orchestrator.ReviewEntry
// @Failure      404        {object}  map[string]string
// @Router       /v1/drivers/{authority}/reviews [get]
func (h *Handler) GetDriverReviews(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	profileAddr, _, err := h.Service.Deriver.Driver(authority)
	if err != nil {
		respondError(c, err)
		return
	}
	reviews, err := h.Service.DriverReviews(c.Request.Context(), profileAddr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetDriverQr godoc
// @Summary      QR code for reviewing a driver
// @Description  PNG by default; format=base64 returns the image and link as JSON
// @Tags         Drivers
// @Produce      png
// @Param        authority  path      string  true   "Driver authority public key"
// @Param        format     query     string  false  "png or base64"
// @Success      200
// @Failure      404        {object}  map[string]string
// @Router       /v1/drivers/{authority}/qr [get]
func (h *Handler) GetDriverQr(c *gin.Context) {
	authority, ok := publicKeyParam(c, "authority")
	if !ok {
		return
	}
	entry, err := h.Service.Driver(c.Request.Context(), authority)
	if err != nil {
		respondError(c, err)
		return
	}

	link := fmt.Sprintf("%s/v1/drivers/%s", h.BaseUrl, authority)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "base64" {
		c.JSON(http.StatusOK, gin.H{
			"link":          link,
			"driver":        entry.Address,
			"license_plate": entry.Profile.LicensePlate,
			"qr_png_base64": base64.StdEncoding.EncodeToString(png),
		})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
