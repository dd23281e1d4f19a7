package handler

import (
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// img is tri-state: omit it to keep the current image, send null to clear
// it, or send a data URI, an http(s) URL or a same-origin path.
type createServiceRequest struct {
	Name            string            `json:"name"             validate:"required,max=120"`
	Price           *float64          `json:"price"            validate:"omitempty,gte=0"`
	Description     string            `json:"description"      validate:"max=2000"`
	DurationMinutes *int              `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Img             domain.ImageField `json:"img"              swaggertype:"string"`
}

type updateServiceRequest struct {
	Name            *string           `json:"name"             validate:"omitempty,min=1,max=120"`
	Price           *float64          `json:"price"            validate:"omitempty,gte=0"`
	Description     *string           `json:"description"      validate:"omitempty,max=2000"`
	DurationMinutes *int              `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Img             domain.ImageField `json:"img"              swaggertype:"string"`
}

type serviceListResponse []domain.Service

func toCreateServiceInput(r createServiceRequest) ports.CreateServiceInput {
	return ports.CreateServiceInput{
		Name:            r.Name,
		Price:           r.Price,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Img:             r.Img,
	}
}

func toServicePatch(r updateServiceRequest) ports.ServicePatch {
	return ports.ServicePatch{
		Name:            r.Name,
		Price:           r.Price,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Img:             r.Img,
	}
}
