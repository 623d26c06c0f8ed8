package controllers

import (
	"net/http"

	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
)

type CarController struct {
	carService *services.CarService
}

func NewCarController(carService *services.CarService) *CarController {
	return &CarController{carService: carService}
}

func (cc *CarController) ListCars(c *gin.Context) {
	cars, err := cc.carService.ListAvailable(c.Request.Context())
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"cars": cars})
}

func (cc *CarController) GetCar(c *gin.Context) {
	car, err := cc.carService.GetCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"car": car})
}
