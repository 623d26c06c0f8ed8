package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"carrental-api/middleware"
	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
)

type OwnerController struct {
	ownerService *services.OwnerService
}

func NewOwnerController(ownerService *services.OwnerService) *OwnerController {
	return &OwnerController{ownerService: ownerService}
}

type CarIDRequest struct {
	CarID string `json:"carId"`
}

// AddCar expects multipart fields carData (JSON) and image.
func (oc *OwnerController) AddCar(c *gin.Context) {
	image, closeImage, err := formImage(c)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	defer closeImage()

	input, err := services.ParseCarInput(c.PostForm("carData"))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	car, err := oc.ownerService.AddCar(c.Request.Context(), c.GetString(middleware.ContextUserID), input, image)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Car added successfully", "car": car})
}

func (oc *OwnerController) ListCars(c *gin.Context) {
	cars, err := oc.ownerService.ListCars(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"cars": cars})
}

func (oc *OwnerController) ToggleCar(c *gin.Context) {
	var req CarIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Car is required")
		return
	}

	if _, err := oc.ownerService.ToggleAvailability(c.Request.Context(), c.GetString(middleware.ContextUserID), req.CarID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, "Car availability toggled")
}

func (oc *OwnerController) DeleteCar(c *gin.Context) {
	var req CarIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Car is required")
		return
	}

	if err := oc.ownerService.DeleteCar(c.Request.Context(), c.GetString(middleware.ContextUserID), req.CarID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, "Car deleted successfully")
}

func (oc *OwnerController) Dashboard(c *gin.Context) {
	data, err := oc.ownerService.Dashboard(c.Request.Context(),
		c.GetString(middleware.ContextUserID), c.GetString(middleware.ContextRole))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"dashboardData": data})
}

func (oc *OwnerController) UpdateUserImage(c *gin.Context) {
	image, closeImage, err := formImage(c)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	defer closeImage()

	url, err := oc.ownerService.UpdateUserImage(c.Request.Context(), c.GetString(middleware.ContextUserID), image)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "User profile updated successfully", "image": url})
}

// formImage opens the "image" multipart file.
func formImage(c *gin.Context) (*services.Upload, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, utils.ValidationError("Image file is required")
		}
		return nil, nil, utils.ValidationError("Invalid upload")
	}
	if header.Size > services.MaxImageSize {
		return nil, nil, utils.ValidationError("Image file is too large")
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, utils.InternalError("Failed to read upload", err)
	}
	return &services.Upload{Filename: header.Filename, Reader: file}, closeFile(file), nil
}

func closeFile(f multipart.File) func() {
	return func() { _ = f.Close() }
}
