package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
)

// AddressHandler serves the province, district and school lookup tables.
type AddressHandler struct{}

func NewAddressHandler() *AddressHandler { return &AddressHandler{} }

// Provinces godoc
// GET /api/v1/addresses/provinces
func (h *AddressHandler) Provinces(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"provinces": registration.Provinces()})
}

// Districts godoc
// GET /api/v1/addresses/districts?province=
// free_text is true when the province has no district table.
func (h *AddressHandler) Districts(c *gin.Context) {
	province := c.Query("province")
	if province == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"province": "province is required"})
		return
	}

	districts, ok := registration.Districts(province)
	if districts == nil {
		districts = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"districts": districts, "free_text": !ok})
}

// Subdistricts godoc
// GET /api/v1/addresses/subdistricts?province=&district=
func (h *AddressHandler) Subdistricts(c *gin.Context) {
	province, district := c.Query("province"), c.Query("district")
	if province == "" || district == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"district": "province and district are required"})
		return
	}

	subs, ok := registration.Subdistricts(province, district)
	if subs == nil {
		subs = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"subdistricts": subs, "free_text": !ok})
}

// Schools godoc
// GET /api/v1/addresses/schools?province=&district=
// Schools whose subdistrict is fixed by the registry.
func (h *AddressHandler) Schools(c *gin.Context) {
	schools := registration.Schools(c.Query("province"), c.Query("district"))
	if schools == nil {
		schools = []registration.School{}
	}
	response.Success(c, http.StatusOK, gin.H{"schools": schools})
}
